package seat

import (
	"context"

	"github.com/bipin523396/cinema-booking/internal/domain/transaction"
)

// Repository は座席台帳のインターフェース
// 可用性フラグの変更は予約トランザクション内からのみ行うこと
type Repository interface {
	// CreateBulk は複数の座席を一括作成する（カタログシード用）
	CreateBulk(ctx context.Context, seats []*Seat) error

	// Count は座席の総数を取得する
	Count(ctx context.Context) (int, error)

	// ListMovies は映画名の一覧を重複なしで取得する
	ListMovies(ctx context.Context) ([]string, error)

	// ListShowTimes は映画の上映時刻一覧を重複なしで取得する
	ListShowTimes(ctx context.Context, movieName string) ([]string, error)

	// ListByShow は上映回の座席一覧を座席番号順で取得する
	ListByShow(ctx context.Context, movieName, showTime string) ([]*Seat, error)

	// CountAvailableByShow は上映回の予約可能座席数を取得する
	CountAvailableByShow(ctx context.Context, movieName, showTime string) (int, error)

	// GetByShowSeatForUpdate は座席を行ロック付きで取得する（トランザクション必須）
	GetByShowSeatForUpdate(ctx context.Context, tx transaction.Tx, movieName, showTime, seatNumber string) (*Seat, error)

	// SetAvailability は座席の可用性フラグを更新する（トランザクション必須）
	SetAvailability(ctx context.Context, tx transaction.Tx, movieName, showTime, seatNumber string, available bool) error
}
