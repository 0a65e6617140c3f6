package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/wasmbed/internal/adapters/telemetry"
	"go.trai.ch/wasmbed/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_OnEndLogsDuration(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var got string
	logger.EXPECT().Debug(gomock.Any()).Do(func(msg string) { got = msg })

	bridge := telemetry.NewBridge(logger)
	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "manifest")
	span.End()

	ro, ok := span.(sdktrace.ReadOnlySpan)
	require.True(t, ok)
	bridge.OnEnd(ro)

	assert.True(t, strings.HasPrefix(got, "manifest done in "), got)
}

func TestBridge_OnEndMarksFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var got string
	logger.EXPECT().Debug(gomock.Any()).Do(func(msg string) { got = msg })

	bridge := telemetry.NewBridge(logger)
	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "build")
	span.SetStatus(codes.Error, "toolchain exited\nwith details")
	span.End()

	bridge.OnEnd(span.(sdktrace.ReadOnlySpan))

	assert.Contains(t, got, "build failed after ")
	assert.True(t, strings.HasSuffix(got, ": toolchain exited"), got)
}

func TestBridge_NilLogger(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "read")
	span.End()

	assert.NotPanics(t, func() { bridge.OnEnd(span.(sdktrace.ReadOnlySpan)) })
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestOTelTracer_ReportsThroughBridge(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var lines []string
	logger.EXPECT().Debug(gomock.Any()).Do(func(msg string) { lines = append(lines, msg) }).Times(2)

	tracer := telemetry.NewOTelTracer(telemetry.NewBridge(logger))
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	ctx, outer := tracer.Start(context.Background(), "module greeter")
	outer.SetAttribute("module", "greeter")
	outer.SetAttribute("size", 42)
	outer.SetAttribute("cached", false)
	outer.SetAttribute("ratio", 0.5)
	outer.SetAttribute("files", []string{"a", "b"})
	outer.SetAttribute("other", struct{}{})

	_, inner := tracer.Start(ctx, "build")
	inner.RecordError(errors.New("boom"))
	inner.End()
	outer.End()

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "build failed after "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], ": boom"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "module greeter done in "), lines[1])
}

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	got, span := telemetry.NoopTracer{}.Start(ctx, "extract")
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		span.SetAttribute("k", "v")
		span.RecordError(errors.New("x"))
		span.End()
	})
}
