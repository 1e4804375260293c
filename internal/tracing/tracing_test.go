package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestRequestID(t *testing.T) {
	assert.Equal(t, "req-1", RequestID("req-1"))

	a, b := RequestID(""), RequestID("")
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRequestIDFromContext(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = RequestIDFromContext(WithRequestID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := RequestIDFromContext(WithRequestID(context.Background(), "req-7"))
	require.True(t, ok)
	assert.Equal(t, "req-7", id)
}

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := Setup(ProviderConfig{ServiceName: "checkout-test", Exporter: ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("tracing-test").Start(context.Background(), "PaymentStrategy.execute")
	span.End()
	require.NoError(t, Shutdown(context.Background(), tp))

	assert.Contains(t, buf.String(), "PaymentStrategy.execute")
	assert.Contains(t, buf.String(), "checkout-test")
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := Setup(ProviderConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestShutdown_Nil(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), nil))
}
