package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bipin523396/cinema-booking/internal/pkg/logger"
)

// CacheRefresher は空席数キャッシュを再計算するインターフェース
type CacheRefresher interface {
	RefreshAvailabilityCache(ctx context.Context) (int, error)
}

// SeatCacheRefresher は空席数キャッシュを定期的に再構築するワーカー
// 座席・予約の状態には一切書き込まず、Redisキャッシュのみを更新する
type SeatCacheRefresher struct {
	catalogService CacheRefresher
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewSeatCacheRefresher は新しいリフレッシャーを作成
func NewSeatCacheRefresher(cs CacheRefresher, interval time.Duration) *SeatCacheRefresher {
	return &SeatCacheRefresher{
		catalogService: cs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *SeatCacheRefresher) Start(ctx context.Context) {
	logger.Info("空席数キャッシュリフレッシャー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数キャッシュリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数キャッシュリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *SeatCacheRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は全上映回の空席数キャッシュを再計算
func (r *SeatCacheRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("空席数キャッシュの再構築開始")

	count, err := r.catalogService.RefreshAvailabilityCache(ctx)
	if err != nil {
		log.Error("空席数キャッシュの再構築失敗", zap.Error(err))
		return
	}

	log.Debug("空席数キャッシュを再構築", zap.Int("refreshed", count))
}
