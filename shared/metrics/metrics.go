package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostel"

// Booking conflict operations.
const (
	OperationCreate = "create"
	OperationShift  = "shift"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Bookings created.",
	})

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking writes rejected because the bed was occupied.",
		},
		[]string{"operation"},
	)

	bookingsShifted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_shifted_total",
		Help:      "Bookings moved to another bed.",
	})

	bookingsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_deleted_total",
		Help:      "Bookings checked out.",
	})

	paymentsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Manual payments recorded.",
	})

	paymentCodeRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_code_rejected_total",
		Help:      "Manual payments rejected for a wrong admin code.",
	})
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			bookingConflicts,
			bookingsShifted,
			bookingsDeleted,
			paymentsRecorded,
			paymentCodeRejected,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingConflict(operation string) {
	bookingConflicts.WithLabelValues(operation).Inc()
}

func IncBookingShifted() {
	bookingsShifted.Inc()
}

func IncBookingDeleted() {
	bookingsDeleted.Inc()
}

func IncPaymentRecorded() {
	paymentsRecorded.Inc()
}

func IncPaymentCodeRejected() {
	paymentCodeRejected.Inc()
}
