package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"github.com/vadimbarashkov/shortlink/pkg/redis"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/vadimbarashkov/shortlink/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	repository "github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
)

// NewLogger builds the service logger from the log section of cfg.
func NewLogger(cfg *config.Config) *httplog.Logger {
	return httplog.NewLogger("shortlink", httplog.Options{
		LogLevel:         cfg.Log.SlogLevel(),
		JSON:             cfg.Log.JSON,
		Concise:          cfg.Log.Concise,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Env,
		},
		QuietDownRoutes: []string{"/api/v1/ping"},
		QuietDownPeriod: 10 * time.Second,
	})
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	version, err := postgres.RunMigrations(cfg.MigrationsPath, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}
	logger.Info("database ready", slog.Uint64("schema_version", uint64(version)))

	opts := []usecase.Option{
		usecase.WithLogger(logger.Logger),
		usecase.WithSpamRules(cfg.Spam.Rules()),
		usecase.WithRateLimit(cfg.RateLimit.Limit, cfg.RateLimit.Window),
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, redis.Options{
			Addr:           cfg.Redis.Addr,
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			DialTimeout:    cfg.Redis.DialTimeout,
			ReadTimeout:    cfg.Redis.ReadTimeout,
			WriteTimeout:   cfg.Redis.WriteTimeout,
			PoolSize:       cfg.Redis.PoolSize,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
		}, logger.Logger)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer client.Close()

		opts = append(opts, usecase.WithCache(rediscache.NewURLCache(client, cfg.Redis.TTL)))
	}

	urlRepo := repository.NewURLRepository(db)
	urlUseCase := usecase.New(urlRepo, opts...)
	router := delivery.NewRouter(logger, urlUseCase, cfg.BaseURL, cfg.HTTPServer.TrustProxy)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
