package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/macropower/folio/pkg/telemetry"
)

func TestSetupDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(t.Context(), "")
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := telemetry.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(t.Context(), "page")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Resource().Attributes(), attribute.String("service.name", "folio"))
	require.NoError(t, tp.Shutdown(t.Context()))
}
