package health_test

import (
	"hostel/internal/handlers/health"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	h := health.New()
	router := chi.NewRouter()
	h.Router(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"SV PG Backend Running"}`, rec.Body.String())
}
