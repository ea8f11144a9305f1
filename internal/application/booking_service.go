package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bipin523396/cinema-booking/internal/domain/booking"
	"github.com/bipin523396/cinema-booking/internal/domain/seat"
	"github.com/bipin523396/cinema-booking/internal/domain/transaction"
	"github.com/bipin523396/cinema-booking/internal/infrastructure/queue"
	redisinfra "github.com/bipin523396/cinema-booking/internal/infrastructure/redis"
	"github.com/bipin523396/cinema-booking/internal/pkg/logger"
	"github.com/bipin523396/cinema-booking/internal/pkg/metrics"
)

const (
	seatLockTTL        = 10 * time.Second
	seatLockMaxRetries = 3
	seatLockRetryDelay = 100 * time.Millisecond
)

// BookingService は予約・座席状態を変更できる唯一のコンポーネント
// Reserve / Cancel / Delete はそれぞれ1つのトランザクションとして実行される
type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	lockManager redisinfra.LockManagerInterface
	publisher   queue.Publisher
	seatCache   redisinfra.SeatCacheInterface
}

func NewBookingService(
	txm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	lm redisinfra.LockManagerInterface,
	sc redisinfra.SeatCacheInterface,
	pub queue.Publisher,
) *BookingService {
	return &BookingService{
		txManager:   txm,
		bookingRepo: br,
		seatRepo:    sr,
		lockManager: lm,
		seatCache:   sc,
		publisher:   pub,
	}
}

type ReserveInput struct {
	CustomerName string
	Email        string
	Phone        string
	MovieName    string
	ShowTime     string
	SeatNumber   string
}

type UpdateContactInput struct {
	BookingID    int64
	CustomerName string
	Email        string
	Phone        string
}

// Reserve は座席を予約する
// 座席行を FOR UPDATE でロックした上で可用性確認・予約挿入・フラグ更新を
// 1トランザクションで行うため、同一座席への並行予約は1件だけ成功する
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*booking.Booking, error) {
	b := booking.NewBooking(input.CustomerName, input.Email, input.Phone,
		input.MovieName, input.ShowTime, input.SeatNumber)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// 分散ロックを取得（DBの行ロックが正当性の本体、こちらは競合の早期排除）
	if s.lockManager != nil {
		lockStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, s.seatLockKey(input.MovieName, input.ShowTime, input.SeatNumber),
			seatLockTTL, seatLockMaxRetries, seatLockRetryDelay)
		if err != nil {
			recordLock("acquire", "failed", time.Since(lockStart))
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				recordBooking("seat_unavailable")
				return nil, seat.ErrSeatUnavailable
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		recordLock("acquire", "success", time.Since(lockStart))
		defer lock.Release(ctx)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		recordBooking("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	se, err := s.seatRepo.GetByShowSeatForUpdate(ctx, tx, input.MovieName, input.ShowTime, input.SeatNumber)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			recordBooking("seat_not_found")
			return nil, err
		}
		recordBooking("error")
		return nil, err
	}
	if !se.IsAvailable {
		recordBooking("seat_unavailable")
		return nil, seat.ErrSeatUnavailable
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		if errors.Is(err, seat.ErrSeatUnavailable) {
			recordBooking("seat_unavailable")
			return nil, err
		}
		recordBooking("error")
		return nil, err
	}
	if err := s.seatRepo.SetAvailability(ctx, tx, input.MovieName, input.ShowTime, input.SeatNumber, false); err != nil {
		recordBooking("error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		recordBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, input.MovieName, input.ShowTime)
	s.publishEvent(ctx, queue.QueueBookingConfirmed, b, se.Price)
	recordBooking("success")
	if m := metrics.Get(); m != nil {
		m.ConfirmedBookings.Inc()
	}
	return b, nil
}

// Cancel は予約をキャンセルし、座席を解放する
// 存在しない・既にキャンセル済みの予約はキャンセル不可
func (s *BookingService) Cancel(ctx context.Context, id int64) (*booking.Booking, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return nil, booking.ErrBookingNotCancellable
		}
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := s.seatRepo.SetAvailability(ctx, tx, b.MovieName, b.ShowTime, b.SeatNumber, true); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, b.MovieName, b.ShowTime)
	s.publishEvent(ctx, queue.QueueBookingCancelled, b, 0)
	if m := metrics.Get(); m != nil {
		m.ConfirmedBookings.Dec()
	}
	return b, nil
}

// Delete は予約行を物理削除する
// 削除時点で確定状態だった場合のみ座席を解放する
func (s *BookingService) Delete(ctx context.Context, id int64) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	wasConfirmed := b.IsConfirmed()

	if err := s.bookingRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if wasConfirmed {
		if err := s.seatRepo.SetAvailability(ctx, tx, b.MovieName, b.ShowTime, b.SeatNumber, true); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, b.MovieName, b.ShowTime)
	if wasConfirmed {
		if m := metrics.Get(); m != nil {
			m.ConfirmedBookings.Dec()
		}
	}
	return nil
}

// UpdateContactInfo は連絡先のみを更新する（座席状態には触れない）
func (s *BookingService) UpdateContactInfo(ctx context.Context, input UpdateContactInput) (*booking.Booking, error) {
	// 検証はストレージに触れる前に行う
	if err := booking.ValidateContact(input.CustomerName, input.Email, input.Phone); err != nil {
		return nil, err
	}
	b, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := b.UpdateContact(input.CustomerName, input.Email, input.Phone); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateContact(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*booking.Detail, error) {
	return s.bookingRepo.GetDetailByID(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*booking.Detail, error) {
	return s.bookingRepo.List(ctx)
}

func (s *BookingService) seatLockKey(movieName, showTime, seatNumber string) string {
	return fmt.Sprintf("seat:%s:%s:%s", movieName, showTime, seatNumber)
}

func (s *BookingService) invalidateCache(ctx context.Context, movieName, showTime string) {
	if s.seatCache == nil {
		return
	}
	if err := s.seatCache.Invalidate(ctx, movieName, showTime); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

// publishEvent はイベントを発行する（失敗してもリクエストは成功扱い）
func (s *BookingService) publishEvent(ctx context.Context, queueName string, b *booking.Booking, price float64) {
	if s.publisher == nil {
		return
	}
	event := queue.BookingEvent{
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
		MovieName:    b.MovieName,
		ShowTime:     b.ShowTime,
		SeatNumber:   b.SeatNumber,
		Price:        price,
		Status:       string(b.Status),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	var err error
	switch queueName {
	case queue.QueueBookingConfirmed:
		err = s.publisher.PublishBookingConfirmed(ctx, event)
	case queue.QueueBookingCancelled:
		err = s.publisher.PublishBookingCancelled(ctx, event)
	}
	if err != nil {
		logger.Warn("予約イベント発行エラー", zap.String("queue", queueName), zap.Error(err))
	}
}

func recordBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func recordLock(operation, status string, d time.Duration) {
	if m := metrics.Get(); m != nil {
		m.SeatLockDuration.WithLabelValues(operation, status).Observe(d.Seconds())
	}
}
