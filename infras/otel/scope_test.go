package otel

import (
	"context"
	"errors"
	"hostel/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func record(t *testing.T, use func(scope Scope)) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("hostel.test").Start(context.Background(), "booking.Create")
	scope := NewScope(span)
	use(scope)
	scope.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	return ended[0]
}

func attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	values := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		values[kv.Key] = kv.Value
	}

	return values
}

func TestScope_SetPlacement(t *testing.T) {
	t.Run("bed", func(t *testing.T) {
		span := record(t, func(scope Scope) { scope.SetPlacement(2, 3, 1) })

		values := attributes(span)
		assert.Equal(t, int64(2), values[AttributeFloor].AsInt64())
		assert.Equal(t, int64(3), values[AttributeRoom].AsInt64())
		assert.Equal(t, int64(1), values[AttributeBed].AsInt64())
	})

	t.Run("room only", func(t *testing.T) {
		span := record(t, func(scope Scope) { scope.SetPlacement(1, 4, 0) })

		values := attributes(span)
		assert.Len(t, values, 2)
		assert.NotContains(t, values, attribute.Key(AttributeBed))
	})
}

func TestScope_SetAttributes(t *testing.T) {
	userID := "0d9c8b7a-6f5e-4d3c-8b2a-190817161514"

	span := record(t, func(scope Scope) {
		scope.SetAttributes(map[string]any{
			"hostel.payment.amount": 350.5,
			"hostel.user.id":        &userID,
			"hostel.beds.available": []int{1, 3},
			"hostel.cache.version":  int64(7),
		})
	})

	values := attributes(span)
	assert.InDelta(t, 350.5, values["hostel.payment.amount"].AsFloat64(), 0.001)
	assert.Equal(t, userID, values["hostel.user.id"].AsString())
	assert.Equal(t, []int64{1, 3}, values["hostel.beds.available"].AsInt64Slice())
	assert.Equal(t, int64(7), values["hostel.cache.version"].AsInt64())
}

func TestScope_TraceError(t *testing.T) {
	t.Run("server error marks the span", func(t *testing.T) {
		span := record(t, func(scope Scope) { scope.TraceIfError(errors.New("connection reset")) })

		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "connection reset", span.Status().Description)
	})

	t.Run("client failure is an event", func(t *testing.T) {
		span := record(t, func(scope Scope) { scope.TraceIfError(failure.NotFound("Booking not found")) })

		assert.Equal(t, codes.Unset, span.Status().Code)
		require.Len(t, span.Events(), 1)
		assert.Equal(t, eventClientFailure, span.Events()[0].Name)
	})

	t.Run("nil", func(t *testing.T) {
		span := record(t, func(scope Scope) { scope.TraceIfError(nil) })

		assert.Equal(t, codes.Unset, span.Status().Code)
		assert.Empty(t, span.Events())
	})
}
