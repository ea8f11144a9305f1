package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bipin523396/cinema-booking/internal/domain/seat"
	redisinfra "github.com/bipin523396/cinema-booking/internal/infrastructure/redis"
	"github.com/bipin523396/cinema-booking/internal/pkg/logger"
)

const (
	seatCacheTTL = 30 * time.Second

	seatsPerRow  = 10
	premiumPrice = 200.00
	regularPrice = 150.00
)

// 固定カタログ（台帳が空の場合の初期シードに使用）
var (
	defaultMovies    = []string{"Inception", "Interstellar", "The Dark Knight"}
	defaultShowTimes = []string{"10:00 AM", "1:00 PM", "4:00 PM", "7:00 PM", "10:00 PM"}
	seatRowLabels    = []string{"A", "B", "C", "D", "E"}
	premiumRows      = map[string]bool{"A": true, "B": true}
)

// CatalogService は座席台帳の参照とシードを担当する
type CatalogService struct {
	seatRepo seat.Repository
	cache    redisinfra.SeatCacheInterface
}

func NewCatalogService(sr seat.Repository, cache redisinfra.SeatCacheInterface) *CatalogService {
	return &CatalogService{seatRepo: sr, cache: cache}
}

func (s *CatalogService) ListMovies(ctx context.Context) ([]string, error) {
	return s.seatRepo.ListMovies(ctx)
}

func (s *CatalogService) ListShowTimes(ctx context.Context, movieName string) ([]string, error) {
	return s.seatRepo.ListShowTimes(ctx, movieName)
}

func (s *CatalogService) ListSeats(ctx context.Context, movieName, showTime string) ([]*seat.Seat, error) {
	return s.seatRepo.ListByShow(ctx, movieName, showTime)
}

func (s *CatalogService) CountAvailableSeats(ctx context.Context, movieName, showTime string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, movieName, showTime)
		if err == nil {
			logger.Debug("キャッシュヒット",
				zap.String("movie", movieName), zap.String("show_time", showTime), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	// DBから取得
	count, err := s.seatRepo.CountAvailableByShow(ctx, movieName, showTime)
	if err != nil {
		return 0, err
	}

	// キャッシュに保存
	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, movieName, showTime, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return count, nil
}

// SeedIfEmpty は台帳が空の場合のみ固定カタログの座席を作成する
// 各映画 × 各上映時刻 × 列A〜E × 番号1〜10、列AとBはプレミアム席
func (s *CatalogService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.seatRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("座席数確認に失敗: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seats := make([]*seat.Seat, 0, len(defaultMovies)*len(defaultShowTimes)*len(seatRowLabels)*seatsPerRow)
	for _, movie := range defaultMovies {
		for _, showTime := range defaultShowTimes {
			for _, row := range seatRowLabels {
				for n := 1; n <= seatsPerRow; n++ {
					seatType := seat.TypeRegular
					price := regularPrice
					if premiumRows[row] {
						seatType = seat.TypePremium
						price = premiumPrice
					}
					se := seat.NewSeat(movie, showTime, fmt.Sprintf("%s%d", row, n), seatType, price)
					if err := se.Validate(); err != nil {
						return 0, err
					}
					seats = append(seats, se)
				}
			}
		}
	}

	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return 0, fmt.Errorf("カタログシードに失敗: %w", err)
	}
	logger.Info("座席カタログをシードしました", zap.Int("seats", len(seats)))
	return len(seats), nil
}

// RefreshAvailabilityCache は全上映回の空席数を再計算してキャッシュを温める
// 台帳は読み取りのみ、書き込み先はキャッシュだけ
func (s *CatalogService) RefreshAvailabilityCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	movies, err := s.seatRepo.ListMovies(ctx)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, movie := range movies {
		showTimes, err := s.seatRepo.ListShowTimes(ctx, movie)
		if err != nil {
			return refreshed, err
		}
		for _, showTime := range showTimes {
			count, err := s.seatRepo.CountAvailableByShow(ctx, movie, showTime)
			if err != nil {
				return refreshed, err
			}
			if err := s.cache.SetAvailableCount(ctx, movie, showTime, count, seatCacheTTL); err != nil {
				logger.Warn("キャッシュ保存エラー", zap.Error(err))
				continue
			}
			refreshed++
		}
	}
	return refreshed, nil
}
