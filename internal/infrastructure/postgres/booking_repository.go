package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bipin523396/cinema-booking/internal/domain/booking"
	"github.com/bipin523396/cinema-booking/internal/domain/seat"
	"github.com/bipin523396/cinema-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID           int64     `db:"id"`
	CustomerName string    `db:"customer_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	MovieName    string    `db:"movie_name"`
	ShowTime     string    `db:"show_time"`
	SeatNumber   string    `db:"seat_number"`
	BookingDate  time.Time `db:"booking_date"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type bookingDetailRow struct {
	bookingRow
	SeatType string  `db:"seat_type"`
	Price    float64 `db:"price"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, CustomerName: r.CustomerName, Email: r.Email, Phone: r.Phone,
		MovieName: r.MovieName, ShowTime: r.ShowTime, SeatNumber: r.SeatNumber,
		BookingDate: r.BookingDate, Status: booking.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *bookingDetailRow) toDetail() *booking.Detail {
	return &booking.Detail{
		Booking:  *r.bookingRow.toEntity(),
		SeatType: r.SeatType,
		Price:    r.Price,
	}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `INSERT INTO bookings (customer_name, email, phone, movie_name, show_time, seat_number, booking_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := sqlxTx.QueryRowContext(ctx, query,
		b.CustomerName, b.Email, b.Phone, b.MovieName, b.ShowTime, b.SeatNumber,
		b.BookingDate, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		// 確定済み予約の部分一意インデックス違反は座席の二重予約を意味する
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return seat.ErrSeatUnavailable
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	query := `SELECT id, customer_name, email, phone, movie_name, show_time, seat_number, booking_date, status, created_at, updated_at
	          FROM bookings WHERE id = $1`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションが不正です")
	}
	query := `SELECT id, customer_name, email, phone, movie_name, show_time, seat_number, booking_date, status, created_at, updated_at
	          FROM bookings WHERE id = $1 FOR UPDATE`
	var row bookingRow
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) List(ctx context.Context) ([]*booking.Detail, error) {
	query := `SELECT b.id, b.customer_name, b.email, b.phone, b.movie_name, b.show_time, b.seat_number,
	                 b.booking_date, b.status, b.created_at, b.updated_at,
	                 s.seat_type, s.price
	          FROM bookings b
	          JOIN seats s ON s.movie_name = b.movie_name AND s.show_time = b.show_time AND s.seat_number = b.seat_number
	          ORDER BY b.booking_date DESC`
	var rows []bookingDetailRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	details := make([]*booking.Detail, len(rows))
	for i := range rows {
		details[i] = rows[i].toDetail()
	}
	return details, nil
}

func (r *BookingRepository) GetDetailByID(ctx context.Context, id int64) (*booking.Detail, error) {
	query := `SELECT b.id, b.customer_name, b.email, b.phone, b.movie_name, b.show_time, b.seat_number,
	                 b.booking_date, b.status, b.created_at, b.updated_at,
	                 s.seat_type, s.price
	          FROM bookings b
	          JOIN seats s ON s.movie_name = b.movie_name AND s.show_time = b.show_time AND s.seat_number = b.seat_number
	          WHERE b.id = $1`
	var row bookingDetailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toDetail(), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) UpdateContact(ctx context.Context, b *booking.Booking) error {
	query := `UPDATE bookings SET customer_name = $1, email = $2, phone = $3, updated_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, b.CustomerName, b.Email, b.Phone, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("連絡先更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, tx transaction.Tx, id int64) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	result, err := sqlxTx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

var _ booking.Repository = (*BookingRepository)(nil)
