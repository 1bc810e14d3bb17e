package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingConflicts.WithLabelValues(OperationShift))
	IncBookingConflict(OperationShift)
	assert.InDelta(t, before+1, testutil.ToFloat64(bookingConflicts.WithLabelValues(OperationShift)), 0)

	before = testutil.ToFloat64(paymentCodeRejected)
	IncPaymentCodeRejected()
	assert.InDelta(t, before+1, testutil.ToFloat64(paymentCodeRejected), 0)

	before = testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/bookings", "200"))
	ObserveHTTP("GET", "/bookings", http.StatusOK, 15*time.Millisecond)
	assert.InDelta(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/bookings", "200")), 0)
}

func TestHandler(t *testing.T) {
	Register()
	IncBookingCreated()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hostel_bookings_created_total")
}
