package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCacheInterface は空席数キャッシュのインターフェース
type SeatCacheInterface interface {
	GetAvailableCount(ctx context.Context, movieName, showTime string) (int, error)
	SetAvailableCount(ctx context.Context, movieName, showTime string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, movieName, showTime string) error
}

// SeatCache は上映回ごとの空席数キャッシュを管理する
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetAvailableCount は上映回の空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, movieName, showTime string) (int, error) {
	key := c.availableCountKey(movieName, showTime)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は上映回の空席数をキャッシュに保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, movieName, showTime string, count int, ttl time.Duration) error {
	key := c.availableCountKey(movieName, showTime)
	if err := c.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は上映回のキャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, movieName, showTime string) error {
	key := c.availableCountKey(movieName, showTime)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) availableCountKey(movieName, showTime string) string {
	return fmt.Sprintf("seats:available:%s:%s", movieName, showTime)
}

var _ SeatCacheInterface = (*SeatCache)(nil)
