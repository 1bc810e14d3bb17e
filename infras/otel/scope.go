package otel

import (
	"fmt"
	"hostel/shared/failure"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	AttributeFloor = "hostel.floor"
	AttributeRoom  = "hostel.room"
	AttributeBed   = "hostel.bed"

	attributeFailureCode = "hostel.failure.code"
	eventClientFailure   = "client failure"
)

type Scope interface {
	End()
	TraceError(err error)
	TraceIfError(err error)
	AddEvent(name string)
	SetAttribute(key string, value any)
	SetAttributes(attributes map[string]any)
	// SetPlacement tags the span with the bed it touches. Zero parts are
	// left out, so a room-level read passes bed 0.
	SetPlacement(floor, room, bed int)
}

type scopeImpl struct {
	span oteltrace.Span
}

func (s *scopeImpl) End() {
	s.span.End()
}

// TraceError marks the span failed. Client failures (4xx) are expected
// outcomes of user input and are recorded as an event instead.
func (s *scopeImpl) TraceError(err error) {
	code := failure.GetCode(err)
	if code < http.StatusInternalServerError {
		s.span.AddEvent(eventClientFailure, oteltrace.WithAttributes(
			attribute.Int(attributeFailureCode, code),
			attribute.String("message", err.Error()),
		))

		return
	}

	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *scopeImpl) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *scopeImpl) AddEvent(name string) {
	s.span.AddEvent(name)
}

func (s *scopeImpl) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		kvs = append(kvs, toAttribute(key, value))
	}

	s.span.SetAttributes(kvs...)
}

func (s *scopeImpl) SetPlacement(floor, room, bed int) {
	kvs := make([]attribute.KeyValue, 0, 3)

	for _, part := range []struct {
		key   string
		value int
	}{
		{AttributeFloor, floor},
		{AttributeRoom, room},
		{AttributeBed, bed},
	} {
		if part.value > 0 {
			kvs = append(kvs, attribute.Int(part.key, part.value))
		}
	}

	s.span.SetAttributes(kvs...)
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch val := value.(type) {
	case bool:
		return attribute.Bool(key, val)
	case string:
		return attribute.String(key, val)
	case *string:
		if val == nil {
			return attribute.String(key, "")
		}

		return attribute.String(key, *val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case []int:
		return attribute.IntSlice(key, val)
	case []string:
		return attribute.StringSlice(key, val)
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", val))
	}
}

func NewScope(span oteltrace.Span) Scope {
	return &scopeImpl{
		span: span,
	}
}
