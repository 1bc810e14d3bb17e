package booking_test

import (
	"bytes"
	"context"
	"encoding/json"
	"hostel/config"
	otelMocks "hostel/infras/otel/mocks"
	"hostel/internal/domains/booking/mocks"
	"hostel/internal/domains/booking/model/dto"
	"hostel/internal/domains/inventory"
	"hostel/internal/handlers/booking"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	bookingID = "6f1c2a4e-3b5d-4e7f-9a01-2c3d4e5f6a7b"
	missingID = "9e8d7c6b-5a49-4382-b716-0f1e2d3c4b5a"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*mocks.MockBookingService, http.Handler) {
	t.Helper()

	svc := mocks.NewMockBookingService(gomock.NewController(t))

	cfg := &config.Config{}
	cfg.App.Upload.MaxSizeMB = 1

	handler := booking.New(svc, cfg, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &body)

	return rec, body
}

func multipartBody(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if photo != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
		header.Set("Content-Type", "image/png")

		part, err := writer.CreatePart(header)
		require.NoError(t, err)

		_, err = part.Write(photo)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func guestFields() map[string]string {
	return map[string]string{
		"name": "Ravi", "phone": "9876543210", "joinDate": "2024-07-01",
		"floor": "2", "room": "3", "bed": "1",
	}
}

func TestCreateBooking(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	t.Run("created with photo", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req dto.CreateBookingRequest, uploads []dto.Upload) (dto.BookingResponse, error) {
				assert.Equal(t, 2, req.Floor)
				assert.Equal(t, 3, req.Room)
				require.Len(t, uploads, 1)
				assert.Equal(t, constant.FormFilePhoto, uploads[0].Field)
				assert.Equal(t, "me.png", uploads[0].FileName)
				assert.Equal(t, png, uploads[0].Content)

				return dto.BookingResponse{ID: bookingID, RoomNumber: "203", Bed: 1}, nil
			})

		body, contentType := multipartBody(t, guestFields(), png)
		req := httptest.NewRequest(http.MethodPost, "/bookings", body)
		req.Header.Set(constant.RequestHeaderContentType, contentType)

		rec, res := serve(router, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, res.Success)
		assert.Contains(t, string(res.Data), `"roomNumber":"203"`)
	})

	t.Run("invalid number", func(t *testing.T) {
		_, router := setup(t)

		fields := guestFields()
		fields["bed"] = "two"

		body, contentType := multipartBody(t, fields, nil)
		req := httptest.NewRequest(http.MethodPost, "/bookings", body)
		req.Header.Set(constant.RequestHeaderContentType, contentType)

		rec, res := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, res.Success)
		assert.Equal(t, "bed must be a number", res.Message)
	})

	t.Run("missing name", func(t *testing.T) {
		_, router := setup(t)

		fields := guestFields()
		delete(fields, "name")

		body, contentType := multipartBody(t, fields, nil)
		req := httptest.NewRequest(http.MethodPost, "/bookings", body)
		req.Header.Set(constant.RequestHeaderContentType, contentType)

		rec, _ := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bed taken", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dto.BookingResponse{}, failure.BadRequestFromString("Bed already booked by: Asha"))

		body, contentType := multipartBody(t, guestFields(), nil)
		req := httptest.NewRequest(http.MethodPost, "/bookings", body)
		req.Header.Set(constant.RequestHeaderContentType, contentType)

		rec, res := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Bed already booked by: Asha", res.Message)
	})
}

func TestGetRoomStatus(t *testing.T) {
	t.Run("missing parameters", func(t *testing.T) {
		_, router := setup(t)

		rec, res := serve(router, httptest.NewRequest(http.MethodGet, "/bookings/room-status?floor=1", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "floor and room query parameters are required", res.Message)
	})

	t.Run("status", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().RoomStatus(gomock.Any(), 1, 3).Return(dto.RoomStatusResponse{
			Floor: 1, Room: 3, RoomNumber: "103", TotalBeds: 3,
			Booked:    []inventory.Occupant{{Bed: 2, Name: "Asha"}},
			Available: []int{1, 3},
		}, nil)

		rec, res := serve(router, httptest.NewRequest(http.MethodGet, "/bookings/room-status?floor=1&room=3", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var status dto.RoomStatusResponse
		require.NoError(t, json.Unmarshal(res.Data, &status))
		assert.Equal(t, []int{1, 3}, status.Available)
		assert.Equal(t, "Asha", status.Booked[0].Name)
	})
}

func TestShiftBooking(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		result      dto.ShiftResponse
		callService bool
		wantCode    int
		wantSuccess bool
		wantMsg     string
	}{
		{
			name:        "moved",
			body:        `{"bookingId":"6f1c2a4e-3b5d-4e7f-9a01-2c3d4e5f6a7b","toFloor":1,"toRoom":2,"toBed":1}`,
			result:      dto.ShiftResponse{Success: true},
			callService: true,
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantMsg:     "Booking shifted successfully",
		},
		{
			name:        "refused",
			body:        `{"bookingId":"6f1c2a4e-3b5d-4e7f-9a01-2c3d4e5f6a7b","toFloor":1,"toRoom":2,"toBed":1}`,
			result:      dto.ShiftResponse{Message: "Bed already booked by: Asha"},
			callService: true,
			wantCode:    http.StatusOK,
			wantMsg:     "Bed already booked by: Asha",
		},
		{
			name:        "bed zero reaches the bed check",
			body:        `{"bookingId":"6f1c2a4e-3b5d-4e7f-9a01-2c3d4e5f6a7b","toFloor":1,"toRoom":2,"toBed":0}`,
			result:      dto.ShiftResponse{Message: "Invalid bed number"},
			callService: true,
			wantCode:    http.StatusOK,
			wantMsg:     "Invalid bed number",
		},
		{
			name:     "missing booking id",
			body:     `{"toFloor":1,"toRoom":2,"toBed":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed booking id",
			body:     `{"bookingId":"b-1","toFloor":1,"toRoom":2,"toBed":1}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)

			if tt.callService {
				svc.EXPECT().Shift(gomock.Any(), gomock.Any()).Return(tt.result, nil)
			}

			rec, res := serve(router, httptest.NewRequest(http.MethodPost, "/bookings/shift", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantSuccess, res.Success)

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, res.Message)
			}
		})
	}
}

func TestDeleteBooking(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Delete(gomock.Any(), bookingID).Return(nil)

		rec, res := serve(router, httptest.NewRequest(http.MethodDelete, "/bookings/"+bookingID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Booking deleted successfully", res.Message)
	})

	t.Run("not found", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Delete(gomock.Any(), missingID).Return(failure.NotFound("Booking not found"))

		rec, res := serve(router, httptest.NewRequest(http.MethodDelete, "/bookings/"+missingID, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Booking not found", res.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, router := setup(t)

		rec, res := serve(router, httptest.NewRequest(http.MethodDelete, "/bookings/b-1", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Booking not found", res.Message)
	})
}

func TestGetBookingByIDMalformed(t *testing.T) {
	_, router := setup(t)

	rec, res := serve(router, httptest.NewRequest(http.MethodGet, "/bookings/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found", res.Message)
}

func TestGetBookings(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dto.GetBookingsResponse{Bookings: []dto.BookingResponse{{ID: bookingID}}, TotalData: 1, TotalPage: 1}, nil)

	rec, res := serve(router, httptest.NewRequest(http.MethodGet, "/bookings?floor=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(res.Data), `"totalData":1`)
}

func TestGetBookingsPaging(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "no params lists everything", query: ""},
		{name: "limit only", query: "?limit=5", wantLimit: 5},
		{name: "page and limit", query: "?page=2&limit=20", wantPage: 2, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)

			svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup) (dto.GetBookingsResponse, error) {
					assert.Equal(t, tt.wantPage, params.Page)
					assert.Equal(t, tt.wantLimit, params.Limit)

					return dto.GetBookingsResponse{TotalPage: 1}, nil
				})

			rec, _ := serve(router, httptest.NewRequest(http.MethodGet, "/bookings"+tt.query, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
