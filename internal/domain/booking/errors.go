package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound       = errors.New("予約が見つかりません")
	ErrBookingNotCancellable = errors.New("予約はキャンセルできません")
	ErrCustomerNameRequired  = errors.New("顧客名は必須です")
	ErrEmailRequired         = errors.New("メールアドレスは必須です")
	ErrInvalidEmail          = errors.New("メールアドレスの形式が不正です")
	ErrPhoneRequired         = errors.New("電話番号は必須です")
	ErrInvalidPhone          = errors.New("電話番号は10〜15桁の数字である必要があります")
	ErrMovieNameRequired     = errors.New("映画名は必須です")
	ErrShowTimeRequired      = errors.New("上映時刻は必須です")
	ErrSeatNumberRequired    = errors.New("座席番号は必須です")
)
