package mocks

import (
	"context"
	"hostel/infras/otel"
)

type noopOtel struct{}

// NewScope implements otel.Otel.
func (o *noopOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

// Shutdown implements otel.Otel.
func (o *noopOtel) Shutdown(_ context.Context) error {
	return nil
}

// NewOtel returns a tracer that records nothing, for unit tests.
func NewOtel() otel.Otel {
	return &noopOtel{}
}
