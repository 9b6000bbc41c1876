// Package ratelimit caps how many URLs a client may submit within a sliding window.
//
// The limiter keeps no state of its own: every decision is a count over the
// persisted records, evaluated backward from the moment of the call.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	DefaultLimit  = 10
	DefaultWindow = 10 * time.Minute
)

type recordCounter interface {
	CountByClientSince(ctx context.Context, clientIP string, since time.Time) (int, error)
}

type Limiter struct {
	counter recordCounter
	limit   int
	window  time.Duration
	now     func() time.Time
}

// New returns a Limiter allowing fewer than limit submissions per window.
// Non-positive values fall back to DefaultLimit and DefaultWindow.
func New(counter recordCounter, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// CountRecent returns the number of records created by clientIP strictly after now minus window.
func (l *Limiter) CountRecent(ctx context.Context, clientIP string, window time.Duration) (int, error) {
	const op = "ratelimit.Limiter.CountRecent"

	n, err := l.counter.CountByClientSince(ctx, clientIP, l.now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count recent urls: %w", op, err)
	}

	return n, nil
}

// Allow returns entity.ErrRateLimited once clientIP reached the limit within the window.
// An empty clientIP cannot be attributed and is always allowed.
func (l *Limiter) Allow(ctx context.Context, clientIP string) error {
	const op = "ratelimit.Limiter.Allow"

	if clientIP == "" {
		return nil
	}

	n, err := l.CountRecent(ctx, clientIP, l.window)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n >= l.limit {
		return fmt.Errorf("%s: %d urls in %s: %w", op, n, l.window, entity.ErrRateLimited)
	}

	return nil
}
