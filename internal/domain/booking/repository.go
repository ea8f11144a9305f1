package booking

import (
	"context"

	"github.com/bipin523396/cinema-booking/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須、IDを採番して設定する）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// GetByIDForUpdate は予約を行ロック付きで取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*Booking, error)

	// List は全予約を座席情報付きで新しい順に取得する
	List(ctx context.Context) ([]*Detail, error)

	// GetDetailByID は予約を座席情報付きで取得する
	GetDetailByID(ctx context.Context, id int64) (*Detail, error)

	// UpdateStatus は予約の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, b *Booking) error

	// UpdateContact は連絡先情報のみを更新する
	UpdateContact(ctx context.Context, b *Booking) error

	// Delete は予約行を物理削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id int64) error
}
