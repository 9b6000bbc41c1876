package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/adapter/cache/redis"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/tests"

	redispkg "github.com/vadimbarashkov/shortlink/pkg/redis"
)

type URLCacheTestSuite struct {
	suite.Suite
	client *goredis.Client
	cache  *redis.URLCache
}

func (suite *URLCacheTestSuite) SetupSuite() {
	addr := tests.StartRedis(suite.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	suite.client, err = redispkg.New(context.Background(), redispkg.Options{Addr: addr}, logger)
	if err != nil {
		suite.T().Fatalf("Failed to connect to redis: %v", err)
	}
	suite.T().Cleanup(func() {
		suite.client.Close()
	})

	suite.cache = redis.NewURLCache(suite.client, time.Minute)
}

func (suite *URLCacheTestSuite) TearDownSubTest() {
	if err := suite.client.FlushDB(context.Background()).Err(); err != nil {
		suite.T().Fatalf("Failed to flush redis: %v", err)
	}
}

func (suite *URLCacheTestSuite) TestGet() {
	ctx := context.Background()

	suite.Run("miss", func() {
		url, err := suite.cache.Get(ctx, "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("corrupted entry", func() {
		suite.Require().NoError(suite.client.Set(ctx, redis.Key("abc123"), "not json", 0).Err())

		url, err := suite.cache.Get(ctx, "abc123")

		suite.Error(err)
		suite.NotErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("hit", func() {
		want := &entity.URL{
			ID:          7,
			ShortCode:   "abc123",
			OriginalURL: "https://example.com",
			ClientIP:    "10.0.0.1",
			CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}

		suite.Require().NoError(suite.cache.Set(ctx, want))

		got, err := suite.cache.Get(ctx, "abc123")

		suite.NoError(err)
		suite.Equal(want, got)
	})
}

func (suite *URLCacheTestSuite) TestSet() {
	ctx := context.Background()

	suite.Run("entry expires", func() {
		err := suite.cache.Set(ctx, &entity.URL{ShortCode: "abc123", OriginalURL: "https://example.com"})
		suite.Require().NoError(err)

		ttl, err := suite.client.TTL(ctx, redis.Key("abc123")).Result()

		suite.NoError(err)
		suite.Greater(ttl, time.Duration(0))
		suite.LessOrEqual(ttl, time.Minute)
	})
}

func TestURLCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite.Run(t, new(URLCacheTestSuite))
}
