package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/bipin523396/cinema-booking/internal/domain/seat"
)

// CatalogHandler は上映カタログのHTTPハンドラー
type CatalogHandler struct {
	catalogService CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを作成する
func NewCatalogHandler(catalogService CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SeatResponse は座席のレスポンス
type SeatResponse struct {
	SeatNumber  string  `json:"seatNumber"`
	SeatType    string  `json:"seatType"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
}

// AvailableCountResponse は空席数のレスポンス
type AvailableCountResponse struct {
	MovieName      string `json:"movieName"`
	ShowTime       string `json:"showTime"`
	AvailableSeats int    `json:"availableSeats"`
}

// ListMovies は上映中の映画一覧を取得する
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	movies, err := h.catalogService.ListMovies(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "映画一覧の取得に失敗しました")
	}
	return c.JSON(http.StatusOK, movies)
}

// ListShowTimes は指定映画の上映時刻一覧を取得する
func (h *CatalogHandler) ListShowTimes(c echo.Context) error {
	movieName := pathParam(c, "movie")
	if movieName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "映画名は必須です")
	}

	showTimes, err := h.catalogService.ListShowTimes(c.Request().Context(), movieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "上映時刻の取得に失敗しました")
	}
	return c.JSON(http.StatusOK, showTimes)
}

// ListSeats は指定上映回の座席一覧を取得する
func (h *CatalogHandler) ListSeats(c echo.Context) error {
	movieName := pathParam(c, "movie")
	showTime := pathParam(c, "showtime")
	if movieName == "" || showTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "映画名と上映時刻は必須です")
	}

	seats, err := h.catalogService.ListSeats(c.Request().Context(), movieName, showTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "座席一覧の取得に失敗しました")
	}

	resp := make([]SeatResponse, 0, len(seats))
	for _, s := range seats {
		resp = append(resp, toSeatResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailableSeats は指定上映回の空席数を取得する
func (h *CatalogHandler) CountAvailableSeats(c echo.Context) error {
	movieName := pathParam(c, "movie")
	showTime := pathParam(c, "showtime")
	if movieName == "" || showTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "映画名と上映時刻は必須です")
	}

	count, err := h.catalogService.CountAvailableSeats(c.Request().Context(), movieName, showTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "空席数の取得に失敗しました")
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{
		MovieName:      movieName,
		ShowTime:       showTime,
		AvailableSeats: count,
	})
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		SeatNumber:  s.SeatNumber,
		SeatType:    string(s.SeatType),
		Price:       s.Price,
		IsAvailable: s.IsAvailable,
	}
}

// pathParam はパスパラメータをURLデコードして返す
// 映画名に空白が含まれるため（例: "The Dark Knight" → "The%20Dark%20Knight"）
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
