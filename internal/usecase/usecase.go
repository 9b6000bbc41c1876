package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
	"github.com/vadimbarashkov/shortlink/internal/shortcode"
	"github.com/vadimbarashkov/shortlink/internal/spam"
)

// ErrMaxRetriesExceeded is returned when every insert attempt hit an already taken short code.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for saving short code")

const (
	maxSaveAttempts = 3
	urlValidation   = "required,max=2000,http_url"
)

type urlRepository interface {
	Save(ctx context.Context, url entity.URL) (*entity.URL, error)
	RetrieveByOriginalURL(ctx context.Context, originalURL string) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	CountByClientSince(ctx context.Context, clientIP string, since time.Time) (int, error)
}

type urlCache interface {
	Get(ctx context.Context, shortCode string) (*entity.URL, error)
	Set(ctx context.Context, url *entity.URL) error
}

type URLUseCase struct {
	urlRepo    urlRepository
	cache      urlCache
	classifier *spam.Classifier
	limiter    *ratelimit.Limiter
	generator  *shortcode.Generator
	validate   *validator.Validate
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*URLUseCase)

// WithCache enables a read-through cache for ResolveShortCode.
func WithCache(cache urlCache) Option {
	return func(uc *URLUseCase) {
		uc.cache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *URLUseCase) {
		uc.logger = logger
	}
}

func WithSpamRules(rules spam.Rules) Option {
	return func(uc *URLUseCase) {
		uc.classifier = spam.New(rules)
	}
}

// WithRateLimit caps submissions per client to fewer than limit within window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(uc *URLUseCase) {
		uc.limiter = ratelimit.New(uc.urlRepo, limit, window)
	}
}

func New(urlRepo urlRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		urlRepo:    urlRepo,
		classifier: spam.New(spam.DefaultRules()),
		limiter:    ratelimit.New(urlRepo, ratelimit.DefaultLimit, ratelimit.DefaultWindow),
		generator:  shortcode.New(),
		validate:   validator.New(),
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL returns the short code record for originalURL, creating it when the URL has not
// been shortened before. created reports whether a new record was saved.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL, clientIP string) (url *entity.URL, created bool, err error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if err := uc.validate.Var(originalURL, urlValidation); err != nil {
		return nil, false, fmt.Errorf("%s: %w: %v", op, entity.ErrInvalidURL, err)
	}

	if verdict := uc.classifier.Classify(originalURL); verdict.Spam {
		return nil, false, fmt.Errorf("%s: %w", op, &entity.SpamError{Reason: verdict.Reason})
	}

	if err := uc.limiter.Allow(ctx, clientIP); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	url, err = uc.urlRepo.RetrieveByOriginalURL(ctx, originalURL)
	if err == nil {
		return url, false, nil
	}
	if !errors.Is(err, entity.ErrURLNotFound) {
		return nil, false, fmt.Errorf("%s: failed to look up url: %w", op, err)
	}

	var saveErr error

	for i := 0; i < maxSaveAttempts; i++ {
		shortCode, err := uc.generator.Generate(ctx, uc.urlRepo.ShortCodeExists)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}

		url, err := uc.urlRepo.Save(ctx, entity.URL{
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			ClientIP:    clientIP,
			CreatedAt:   uc.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				saveErr = err
				continue
			}

			return nil, false, fmt.Errorf("%s: failed to save url: %w", op, err)
		}

		return url, true, nil
	}

	return nil, false, fmt.Errorf("%s: %w: %w", op, ErrMaxRetriesExceeded, saveErr)
}

// ResolveShortCode returns the record stored for shortCode or entity.ErrURLNotFound.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	if !shortcode.IsValid(shortCode) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	if uc.cache != nil {
		url, err := uc.cache.Get(ctx, shortCode)
		if err == nil {
			return url, nil
		}
		if !errors.Is(err, entity.ErrURLNotFound) {
			uc.logger.Warn("failed to read url from cache",
				slog.String("short_code", shortCode),
				slog.Any("err", err),
			)
		}
	}

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, url); err != nil {
			uc.logger.Warn("failed to write url to cache",
				slog.String("short_code", shortCode),
				slog.Any("err", err),
			)
		}
	}

	return url, nil
}
