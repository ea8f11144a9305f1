package handler

import (
	"context"

	"github.com/bipin523396/cinema-booking/internal/application"
	"github.com/bipin523396/cinema-booking/internal/domain/booking"
	"github.com/bipin523396/cinema-booking/internal/domain/seat"
)

// CatalogServiceInterface はカタログサービスのインターフェース
type CatalogServiceInterface interface {
	ListMovies(ctx context.Context) ([]string, error)
	ListShowTimes(ctx context.Context, movieName string) ([]string, error)
	ListSeats(ctx context.Context, movieName, showTime string) ([]*seat.Seat, error)
	CountAvailableSeats(ctx context.Context, movieName, showTime string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Reserve(ctx context.Context, input application.ReserveInput) (*booking.Booking, error)
	Cancel(ctx context.Context, id int64) (*booking.Booking, error)
	Delete(ctx context.Context, id int64) error
	UpdateContactInfo(ctx context.Context, input application.UpdateContactInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id int64) (*booking.Detail, error)
	ListBookings(ctx context.Context) ([]*booking.Detail, error)
}
