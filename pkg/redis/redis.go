package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultRetryInterval  = 500 * time.Millisecond
	defaultMaxWait        = 5 * time.Second
	defaultPingTimeout    = 2 * time.Second
)

// Options configures the client and the retry policy used while connecting.
type Options struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // total time allowed for connection attempts
	RetryInterval  time.Duration // initial wait between attempts, doubled up to MaxWait
	MaxWait        time.Duration
	PingTimeout    time.Duration
}

func (o *Options) setDefaults() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = defaultRetryInterval
	}
	if o.MaxWait <= 0 {
		o.MaxWait = defaultMaxWait
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = defaultPingTimeout
	}
}

// New creates a client and pings it with exponential backoff until it answers,
// ConnectTimeout elapses or ctx is done.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*redis.Client, error) {
	const op = "redis.New"

	if opts.Addr == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("empty address"))
	}

	opts.setDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	wait := opts.RetryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			logger.Info("connected to redis",
				slog.String("addr", opts.Addr),
				slog.Int("attempts", attempt),
			)
			return client, nil
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			client.Close()
			return nil, fmt.Errorf("%s: redis unavailable at %s after %d attempts: %w", op, opts.Addr, attempt, err)
		case <-timer.C:
			logger.Warn("redis connection failed, retrying",
				slog.String("addr", opts.Addr),
				slog.Int("attempt", attempt),
				slog.Duration("next_retry_in", wait),
				slog.Any("err", err),
			)

			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}
