package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatUnavailable    = errors.New("座席は既に予約されています")
	ErrMovieNameRequired  = errors.New("映画名は必須です")
	ErrShowTimeRequired   = errors.New("上映時刻は必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrInvalidSeatType    = errors.New("座席種別が不正です")
	ErrInvalidPrice       = errors.New("価格は0より大きい必要があります")
)
