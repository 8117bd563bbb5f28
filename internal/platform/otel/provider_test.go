package otel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/askiada/go-clusterphot/internal/platform/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "")

	tp, shutdown, err := otel.Setup(context.Background(), "test")
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, shutdown(context.Background()))

	_, ok := tp.(*sdktrace.TracerProvider)
	assert.False(t, ok)
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("CLUSTERSIM_OTEL_ENABLED", "false")

	tp, shutdown, err := otel.Setup(context.Background(), "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, ok := tp.(*sdktrace.TracerProvider)
	assert.False(t, ok)
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address, nothing is exported.
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("CLUSTERSIM_OTEL_ENABLED", "true")

	tp, shutdown, err := otel.Setup(context.Background(), "test")
	require.NoError(t, err)

	_, ok := tp.(*sdktrace.TracerProvider)
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSetupInvalidFlag(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENABLED", "maybe")

	_, _, err := otel.Setup(context.Background(), "test")
	require.Error(t, err)
}
