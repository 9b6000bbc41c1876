package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/shortlink/internal/entity"

	ratelimitMock "github.com/vadimbarashkov/shortlink/mocks/ratelimit"
)

var (
	errUnknown = errors.New("unknown error")
	fixedNow   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func setupLimiter(t *testing.T) (*Limiter, *ratelimitMock.MockRecordCounter) {
	t.Helper()

	counter := ratelimitMock.NewMockRecordCounter(t)
	l := New(counter, DefaultLimit, DefaultWindow)
	l.now = func() time.Time { return fixedNow }

	return l, counter
}

func TestNew(t *testing.T) {
	l := New(nil, 0, -time.Second)

	assert.Equal(t, DefaultLimit, l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestLimiter_CountRecent(t *testing.T) {
	t.Run("window is measured back from now", func(t *testing.T) {
		l, counter := setupLimiter(t)

		counter.
			On("CountByClientSince", context.Background(), "10.0.0.1", fixedNow.Add(-5*time.Minute)).
			Once().
			Return(3, nil)

		n, err := l.CountRecent(context.Background(), "10.0.0.1", 5*time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("counter error", func(t *testing.T) {
		l, counter := setupLimiter(t)

		counter.
			On("CountByClientSince", context.Background(), "10.0.0.1", fixedNow.Add(-DefaultWindow)).
			Once().
			Return(0, errUnknown)

		n, err := l.CountRecent(context.Background(), "10.0.0.1", DefaultWindow)

		assert.ErrorIs(t, err, errUnknown)
		assert.Zero(t, n)
	})
}

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr error
	}{
		{name: "no recent urls", count: 0},
		{name: "one below the limit", count: DefaultLimit - 1},
		{name: "at the limit", count: DefaultLimit, wantErr: entity.ErrRateLimited},
		{name: "over the limit", count: DefaultLimit + 5, wantErr: entity.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, counter := setupLimiter(t)

			counter.
				On("CountByClientSince", context.Background(), "10.0.0.1", fixedNow.Add(-DefaultWindow)).
				Once().
				Return(tt.count, nil)

			err := l.Allow(context.Background(), "10.0.0.1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("anonymous client", func(t *testing.T) {
		l, _ := setupLimiter(t)

		assert.NoError(t, l.Allow(context.Background(), ""))
	})

	t.Run("counter error", func(t *testing.T) {
		l, counter := setupLimiter(t)

		counter.
			On("CountByClientSince", context.Background(), "10.0.0.1", fixedNow.Add(-DefaultWindow)).
			Once().
			Return(0, errUnknown)

		err := l.Allow(context.Background(), "10.0.0.1")

		assert.ErrorIs(t, err, errUnknown)
		assert.NotErrorIs(t, err, entity.ErrRateLimited)
	})
}
