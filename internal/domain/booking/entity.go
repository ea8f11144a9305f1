package booking

import (
	"regexp"
	"strings"
	"time"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneStrip   = regexp.MustCompile(`[\s\-()]`)
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
)

// Booking は予約エンティティを表す
// 座席は (MovieName, ShowTime, SeatNumber) の組で参照する
type Booking struct {
	ID           int64
	CustomerName string
	Email        string
	Phone        string
	MovieName    string
	ShowTime     string
	SeatNumber   string
	BookingDate  time.Time
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Detail は座席情報を結合した予約を表す（一覧・取得APIで使用）
type Detail struct {
	Booking
	SeatType string
	Price    float64
}

// NewBooking は新しい予約を確定状態で作成する
func NewBooking(customerName, email, phone, movieName, showTime, seatNumber string) *Booking {
	now := time.Now()
	return &Booking{
		CustomerName: customerName,
		Email:        email,
		Phone:        phone,
		MovieName:    movieName,
		ShowTime:     showTime,
		SeatNumber:   seatNumber,
		BookingDate:  now,
		Status:       StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsConfirmed は予約が座席を保持しているかを返す
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Cancel は予約をキャンセルする（確定状態の予約のみ）
func (b *Booking) Cancel() error {
	if b.Status != StatusConfirmed {
		return ErrBookingNotCancellable
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateContact は連絡先情報を更新する（座席状態には触れない）
func (b *Booking) UpdateContact(customerName, email, phone string) error {
	if err := ValidateContact(customerName, email, phone); err != nil {
		return err
	}
	b.CustomerName = customerName
	b.Email = email
	b.Phone = phone
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if err := ValidateContact(b.CustomerName, b.Email, b.Phone); err != nil {
		return err
	}
	if b.MovieName == "" {
		return ErrMovieNameRequired
	}
	if b.ShowTime == "" {
		return ErrShowTimeRequired
	}
	if b.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	return nil
}

// ValidateContact は連絡先フィールドを検証する
// 電話番号は空白・ハイフン・括弧を除去した上で10〜15桁の数字であること
func ValidateContact(customerName, email, phone string) error {
	if strings.TrimSpace(customerName) == "" {
		return ErrCustomerNameRequired
	}
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if phone == "" {
		return ErrPhoneRequired
	}
	normalized := phoneStrip.ReplaceAllString(phone, "")
	if len(normalized) < 10 || len(normalized) > 15 || !digitsOnly.MatchString(normalized) {
		return ErrInvalidPhone
	}
	return nil
}
