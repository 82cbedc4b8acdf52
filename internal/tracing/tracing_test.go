package tracing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracing("mcp-investment-sim-test", "", zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, Tracer)

	_, span := Tracer.Start(context.Background(), "probe")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
