package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type urlDB struct {
	ID          int64          `db:"id"`
	ShortCode   string         `db:"short_code"`
	OriginalURL string         `db:"original_url"`
	ClientIP    sql.NullString `db:"client_ip"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		ClientIP:    u.ClientIP.String,
		CreatedAt:   u.CreatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Save(ctx context.Context, url entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(short_code, original_url, client_ip, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, short_code, original_url, client_ip, created_at`

	var rec urlDB

	err := r.db.GetContext(ctx, &rec, query, url.ShortCode, url.OriginalURL, nullString(url.ClientIP), url.CreatedAt)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT id, short_code, original_url, client_ip, created_at
		FROM urls
		WHERE short_code = $1`

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return rec.toEntity(), nil
}

// RetrieveByOriginalURL returns the oldest record for originalURL.
func (r *URLRepository) RetrieveByOriginalURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByOriginalURL"
	const query = `SELECT id, short_code, original_url, client_ip, created_at
		FROM urls
		WHERE original_url = $1
		ORDER BY id
		LIMIT 1`

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, originalURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.ShortCodeExists"
	const query = `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to check short code: %w", op, err)
	}

	return exists, nil
}

// CountByClientSince counts records created by clientIP strictly after since.
func (r *URLRepository) CountByClientSince(ctx context.Context, clientIP string, since time.Time) (int, error) {
	const op = "adapter.repository.postgres.URLRepository.CountByClientSince"
	const query = `SELECT COUNT(*) FROM urls WHERE client_ip = $1 AND created_at > $2`

	var n int

	if err := r.db.GetContext(ctx, &n, query, clientIP, since); err != nil {
		return 0, fmt.Errorf("%s: failed to count rows in urls table: %w", op, err)
	}

	return n, nil
}
