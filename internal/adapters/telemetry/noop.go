package telemetry

import (
	"context"

	"go.trai.ch/wasmbed/internal/core/ports"
)

// NoopTracer discards all spans.
type NoopTracer struct{}

// Start returns ctx unchanged and a span that does nothing.
func (NoopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}
