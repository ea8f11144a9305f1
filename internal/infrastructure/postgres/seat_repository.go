package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bipin523396/cinema-booking/internal/domain/seat"
	"github.com/bipin523396/cinema-booking/internal/domain/transaction"
)

type seatRow struct {
	ID          int64     `db:"id"`
	MovieName   string    `db:"movie_name"`
	ShowTime    string    `db:"show_time"`
	SeatNumber  string    `db:"seat_number"`
	SeatType    string    `db:"seat_type"`
	Price       float64   `db:"price"`
	IsAvailable bool      `db:"is_available"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, MovieName: r.MovieName, ShowTime: r.ShowTime,
		SeatNumber: r.SeatNumber, SeatType: seat.Type(r.SeatType),
		Price: r.Price, IsAvailable: r.IsAvailable,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 500
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行
func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*seat.Seat) error {
	query := `INSERT INTO seats (movie_name, show_time, seat_number, seat_type, price, is_available, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*8)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, s.MovieName, s.ShowTime, s.SeatNumber, string(s.SeatType), s.Price, s.IsAvailable, s.CreatedAt, s.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats`); err != nil {
		return 0, fmt.Errorf("座席数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *SeatRepository) ListMovies(ctx context.Context) ([]string, error) {
	movies := []string{}
	if err := r.db.SelectContext(ctx, &movies, `SELECT DISTINCT movie_name FROM seats ORDER BY movie_name`); err != nil {
		return nil, fmt.Errorf("映画一覧取得に失敗: %w", err)
	}
	return movies, nil
}

func (r *SeatRepository) ListShowTimes(ctx context.Context, movieName string) ([]string, error) {
	showTimes := []string{}
	if err := r.db.SelectContext(ctx, &showTimes, `SELECT DISTINCT show_time FROM seats WHERE movie_name = $1 ORDER BY show_time`, movieName); err != nil {
		return nil, fmt.Errorf("上映時刻一覧取得に失敗: %w", err)
	}
	return showTimes, nil
}

func (r *SeatRepository) ListByShow(ctx context.Context, movieName, showTime string) ([]*seat.Seat, error) {
	query := `SELECT id, movie_name, show_time, seat_number, seat_type, price, is_available, created_at, updated_at
	          FROM seats WHERE movie_name = $1 AND show_time = $2 ORDER BY seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, movieName, showTime); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) CountAvailableByShow(ctx context.Context, movieName, showTime string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE movie_name = $1 AND show_time = $2 AND is_available = TRUE`, movieName, showTime)
	return count, err
}

// GetByShowSeatForUpdate は SELECT ... FOR UPDATE で座席行をロックする
// 同一座席への並行予約はこの行ロックで直列化される
func (r *SeatRepository) GetByShowSeatForUpdate(ctx context.Context, tx transaction.Tx, movieName, showTime, seatNumber string) (*seat.Seat, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションが不正です")
	}
	query := `SELECT id, movie_name, show_time, seat_number, seat_type, price, is_available, created_at, updated_at
	          FROM seats WHERE movie_name = $1 AND show_time = $2 AND seat_number = $3 FOR UPDATE`
	var row seatRow
	if err := sqlxTx.GetContext(ctx, &row, query, movieName, showTime, seatNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) SetAvailability(ctx context.Context, tx transaction.Tx, movieName, showTime, seatNumber string, available bool) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `UPDATE seats SET is_available = $1, updated_at = NOW() WHERE movie_name = $2 AND show_time = $3 AND seat_number = $4`
	result, err := sqlxTx.ExecContext(ctx, query, available, movieName, showTime, seatNumber)
	if err != nil {
		return fmt.Errorf("座席状態更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

var _ seat.Repository = (*SeatRepository)(nil)
