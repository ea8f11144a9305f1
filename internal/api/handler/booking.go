package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bipin523396/cinema-booking/internal/application"
	"github.com/bipin523396/cinema-booking/internal/domain/booking"
	"github.com/bipin523396/cinema-booking/internal/domain/seat"
)

// BookingHandler は予約のHTTPハンドラー
type BookingHandler struct {
	bookingService BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを作成する
func NewBookingHandler(bookingService BookingServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest は予約作成リクエスト
type CreateBookingRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
	MovieName    string `json:"movieName" validate:"required"`
	ShowTime     string `json:"showTime" validate:"required"`
	SeatNumber   string `json:"seatNumber" validate:"required"`
}

// UpdateBookingRequest は予約の連絡先更新リクエスト
type UpdateBookingRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
}

// CreateBookingResponse は予約作成レスポンス
type CreateBookingResponse struct {
	Success   bool  `json:"success"`
	BookingID int64 `json:"bookingId"`
}

// MutationResponse は更新系操作のレスポンス
type MutationResponse struct {
	Success bool             `json:"success"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

// BookingResponse は予約のレスポンス
type BookingResponse struct {
	ID           int64   `json:"id"`
	CustomerName string  `json:"customerName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	MovieName    string  `json:"movieName"`
	ShowTime     string  `json:"showTime"`
	SeatNumber   string  `json:"seatNumber"`
	SeatType     string  `json:"seatType,omitempty"`
	Price        float64 `json:"price,omitempty"`
	BookingDate  string  `json:"bookingDate"`
	Status       string  `json:"status"`
}

// Create は座席を予約する
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.bookingService.Reserve(c.Request().Context(), application.ReserveInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		MovieName:    req.MovieName,
		ShowTime:     req.ShowTime,
		SeatNumber:   req.SeatNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, seat.ErrSeatNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "指定された座席が見つかりません")
		case errors.Is(err, seat.ErrSeatUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, "指定された座席は既に予約されています")
		case isValidationError(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "予約処理に失敗しました")
		}
	}

	return c.JSON(http.StatusCreated, CreateBookingResponse{
		Success:   true,
		BookingID: b.ID,
	})
}

// List は全予約の一覧を取得する
func (h *BookingHandler) List(c echo.Context) error {
	bookings, err := h.bookingService.ListBookings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "予約一覧の取得に失敗しました")
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toDetailResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID は予約をIDで取得する
func (h *BookingHandler) GetByID(c echo.Context) error {
	id, err := parseBookingID(c)
	if err != nil {
		return err
	}

	b, err := h.bookingService.GetBooking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "予約が見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "予約の取得に失敗しました")
	}
	return c.JSON(http.StatusOK, toDetailResponse(b))
}

// UpdateContact は予約の連絡先情報を更新する
func (h *BookingHandler) UpdateContact(c echo.Context) error {
	id, err := parseBookingID(c)
	if err != nil {
		return err
	}

	var req UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.bookingService.UpdateContactInfo(c.Request().Context(), application.UpdateContactInput{
		BookingID:    id,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "予約が見つかりません")
		case isValidationError(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "予約の更新に失敗しました")
		}
	}
	resp := toBookingResponse(b)
	return c.JSON(http.StatusOK, MutationResponse{Success: true, Booking: &resp})
}

// Cancel は予約をキャンセルし座席を解放する
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseBookingID(c)
	if err != nil {
		return err
	}

	b, err := h.bookingService.Cancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotCancellable) {
			return echo.NewHTTPError(http.StatusNotFound, "キャンセル可能な予約が見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "キャンセル処理に失敗しました")
	}
	resp := toBookingResponse(b)
	return c.JSON(http.StatusOK, MutationResponse{Success: true, Booking: &resp})
}

// Delete は予約を削除する（確定済みの場合は座席も解放する）
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := parseBookingID(c)
	if err != nil {
		return err
	}

	if err := h.bookingService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "予約が見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "削除処理に失敗しました")
	}
	return c.JSON(http.StatusOK, MutationResponse{Success: true})
}

func parseBookingID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "不正な予約IDです")
	}
	return id, nil
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		CustomerName: b.CustomerName,
		Email:        b.Email,
		Phone:        b.Phone,
		MovieName:    b.MovieName,
		ShowTime:     b.ShowTime,
		SeatNumber:   b.SeatNumber,
		BookingDate:  b.BookingDate.Format(time.RFC3339),
		Status:       string(b.Status),
	}
}

func toDetailResponse(d *booking.Detail) BookingResponse {
	resp := toBookingResponse(&d.Booking)
	resp.SeatType = d.SeatType
	resp.Price = d.Price
	return resp
}

func isValidationError(err error) bool {
	for _, target := range []error{
		booking.ErrCustomerNameRequired,
		booking.ErrEmailRequired,
		booking.ErrInvalidEmail,
		booking.ErrPhoneRequired,
		booking.ErrInvalidPhone,
		booking.ErrMovieNameRequired,
		booking.ErrShowTimeRequired,
		booking.ErrSeatNumberRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
