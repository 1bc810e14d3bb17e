package middleware_test

import (
	"hostel/shared/failure"
	"hostel/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestUUIDParam(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{name: "uuid", id: "6f1c2a4e-3b5d-4e7f-9a01-2c3d4e5f6a7b", wantCode: http.StatusNoContent},
		{name: "short id", id: "b-1", wantCode: http.StatusNotFound},
		{name: "sql fragment", id: "1%27%20OR%201=1", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.With(middleware.UUIDParam("id", failure.NotFound("Booking not found"))).
				Get("/bookings/{id}", func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/"+tt.id, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusNotFound {
				assert.Contains(t, rec.Body.String(), "Booking not found")
			}
		})
	}
}
