package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client, err := NewClient(&Config{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSeatCache_GetAvailableCount(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewSeatCache(client)
	ctx := context.Background()

	movieName := "cache-test-movie"
	showTime := "7:00 PM"
	t.Cleanup(func() { cache.Invalidate(ctx, movieName, showTime) })

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		_, err := cache.GetAvailableCount(ctx, movieName, showTime)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("キャッシュにセットした値を取得できる", func(t *testing.T) {
		err := cache.SetAvailableCount(ctx, movieName, showTime, 50, 30*time.Second)
		require.NoError(t, err)

		count, err := cache.GetAvailableCount(ctx, movieName, showTime)
		require.NoError(t, err)
		assert.Equal(t, 50, count)
	})

	t.Run("キャッシュを無効化できる", func(t *testing.T) {
		err := cache.SetAvailableCount(ctx, movieName, showTime, 49, 30*time.Second)
		require.NoError(t, err)

		err = cache.Invalidate(ctx, movieName, showTime)
		require.NoError(t, err)

		_, err = cache.GetAvailableCount(ctx, movieName, showTime)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("上映回ごとにキーが分かれている", func(t *testing.T) {
		err := cache.SetAvailableCount(ctx, movieName, "10:00 AM", 10, 30*time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { cache.Invalidate(ctx, movieName, "10:00 AM") })

		err = cache.SetAvailableCount(ctx, movieName, "1:00 PM", 20, 30*time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { cache.Invalidate(ctx, movieName, "1:00 PM") })

		morning, err := cache.GetAvailableCount(ctx, movieName, "10:00 AM")
		require.NoError(t, err)
		afternoon, err := cache.GetAvailableCount(ctx, movieName, "1:00 PM")
		require.NoError(t, err)

		assert.Equal(t, 10, morning)
		assert.Equal(t, 20, afternoon)
	})

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		err := cache.SetAvailableCount(ctx, movieName, "4:00 PM", 30, 100*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(200 * time.Millisecond)

		_, err = cache.GetAvailableCount(ctx, movieName, "4:00 PM")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
