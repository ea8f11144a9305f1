package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingBody(seatNumber string) map[string]interface{} {
	return map[string]interface{}{
		"customerName": "山田太郎",
		"email":        "taro@example.com",
		"phone":        "090-1234-5678",
		"movieName":    "Inception",
		"showTime":     "7:00 PM",
		"seatNumber":   seatNumber,
	}
}

// TestE2E_CompleteBookingJourney は予約の完全なジャーニーをテスト
// カタログ参照 → 予約 → 取得 → 連絡先更新 → キャンセル
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := getTestServer(t)

	var bookingID int64

	t.Run("映画一覧取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/movies", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var movies []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
		assert.Contains(t, movies, "Inception")
	})

	t.Run("上映時刻取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/showtimes/Inception", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var showTimes []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &showTimes))
		assert.Len(t, showTimes, 5)
	})

	t.Run("座席一覧取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/seats/Inception/7:00%20PM", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var seats []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seats))
		assert.Len(t, seats, 50)
	})

	t.Run("予約作成", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/bookings", bookingBody("A5"))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Success   bool  `json:"success"`
			BookingID int64 `json:"bookingId"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotZero(t, resp.BookingID)
		bookingID = resp.BookingID
	})

	t.Run("同じ座席の二重予約は400", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/bookings", bookingBody("A5"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("予約取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/bookings/%d", bookingID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp["status"])
		assert.Equal(t, "A5", resp["seatNumber"])
		assert.Equal(t, "premium", resp["seatType"])
		assert.Equal(t, 200.00, resp["price"])
	})

	t.Run("連絡先更新", func(t *testing.T) {
		body := map[string]interface{}{
			"customerName": "佐藤花子",
			"email":        "hanako@example.com",
			"phone":        "080-9876-5432",
		}
		rec := server.Request(http.MethodPut, fmt.Sprintf("/api/bookings/%d", bookingID), body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Booking map[string]interface{} `json:"booking"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "佐藤花子", resp.Booking["customerName"])
		// 座席参照は変わらない
		assert.Equal(t, "A5", resp.Booking["seatNumber"])
	})

	t.Run("キャンセル", func(t *testing.T) {
		rec := server.Request(http.MethodPut, fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Booking map[string]interface{} `json:"booking"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "cancelled", resp.Booking["status"])
	})

	t.Run("二重キャンセルは404", func(t *testing.T) {
		rec := server.Request(http.MethodPut, fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("キャンセル後は再予約できる", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/bookings", bookingBody("A5"))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

// TestE2E_AvailableSeatsCount は空席数APIの整合性をテスト
func TestE2E_AvailableSeatsCount(t *testing.T) {
	server := getTestServer(t)

	countAvailable := func() int {
		rec := server.Request(http.MethodGet, "/api/seats/Interstellar/10:00%20AM/available", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			AvailableSeats int `json:"availableSeats"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.AvailableSeats
	}

	before := countAvailable()
	assert.Equal(t, 50, before)

	body := bookingBody("C7")
	body["movieName"] = "Interstellar"
	body["showTime"] = "10:00 AM"
	rec := server.Request(http.MethodPost, "/api/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	// キャッシュは予約時に無効化されるため即座に反映される
	after := countAvailable()
	assert.Equal(t, before-1, after)
}

// TestE2E_ConcurrentBookingRequests は同一座席への並行予約をHTTP経由でテスト
func TestE2E_ConcurrentBookingRequests(t *testing.T) {
	server := getTestServer(t)

	const numRequests = 10
	var created int32
	var rejected int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := bookingBody("E1")
			body["email"] = fmt.Sprintf("user%d@example.com", n)
			rec := server.Request(http.MethodPost, "/api/bookings", body)
			switch rec.Code {
			case http.StatusCreated:
				atomic.AddInt32(&created, 1)
			case http.StatusBadRequest:
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected status: %d", rec.Code)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created, "成功は1つだけ")
	assert.Equal(t, int32(numRequests-1), rejected, "残りは全て400")
}

// TestE2E_ValidationErrors は入力検証の境界をテスト
func TestE2E_ValidationErrors(t *testing.T) {
	server := getTestServer(t)

	t.Run("存在しない座席は400", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/bookings", bookingBody("Z99"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("不正なメールは400", func(t *testing.T) {
		body := bookingBody("D1")
		body["email"] = "not-an-email"
		rec := server.Request(http.MethodPost, "/api/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("短すぎる電話番号は400", func(t *testing.T) {
		body := bookingBody("D1")
		body["phone"] = "123"
		rec := server.Request(http.MethodPost, "/api/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("必須フィールド欠落は400", func(t *testing.T) {
		body := bookingBody("D1")
		delete(body, "customerName")
		rec := server.Request(http.MethodPost, "/api/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("存在しない予約IDは404", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/bookings/999999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("数値でない予約IDは400", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/bookings/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
