package seat

import "time"

// Type は座席の種別を表す
type Type string

const (
	TypeRegular Type = "regular"
	TypePremium Type = "premium"
)

// Seat は座席エンティティを表す
// (MovieName, ShowTime, SeatNumber) の組が座席を一意に識別する
type Seat struct {
	ID          int64
	MovieName   string
	ShowTime    string
	SeatNumber  string
	SeatType    Type
	Price       float64
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(movieName, showTime, seatNumber string, seatType Type, price float64) *Seat {
	now := time.Now()
	return &Seat{
		MovieName:   movieName,
		ShowTime:    showTime,
		SeatNumber:  seatNumber,
		SeatType:    seatType,
		Price:       price,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Hold は座席を予約済み状態にする
func (s *Seat) Hold() error {
	if !s.IsAvailable {
		return ErrSeatUnavailable
	}
	s.IsAvailable = false
	s.UpdatedAt = time.Now()
	return nil
}

// Release は座席を予約可能状態に戻す
func (s *Seat) Release() {
	s.IsAvailable = true
	s.UpdatedAt = time.Now()
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.MovieName == "" {
		return ErrMovieNameRequired
	}
	if s.ShowTime == "" {
		return ErrShowTimeRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if s.SeatType != TypeRegular && s.SeatType != TypePremium {
		return ErrInvalidSeatType
	}
	if s.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
