package telemetry

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestGetSampler(t *testing.T) {
	tests := []struct {
		samplerType string
		expected    trace.Sampler
	}{
		{"always", trace.AlwaysSample()},
		{"never", trace.NeverSample()},
		{"unrecognized", trace.AlwaysSample()},
	}

	for _, tt := range tests {
		t.Run(tt.samplerType, func(t *testing.T) {
			got := getSampler(Config{SamplerType: tt.samplerType})
			assert.Equal(t, tt.expected.Description(), got.Description())
		})
	}

	ratio := getSampler(Config{SamplerType: "ratio", SamplerRatio: 0.5})
	assert.Contains(t, ratio.Description(), "TraceIDRatioBased")
}

func TestWithSpanPropagatesResult(t *testing.T) {
	called := false
	err := WithSpan(context.Background(), "test.op", func(ctx context.Context) error {
		called = true
		SetAttributes(ctx, attribute.String("key", "value"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = WithSpan(context.Background(), "test.fail", func(context.Context) error {
		return boom
	})
	assert.Equal(t, boom, err)
}

func TestTracerDefaultName(t *testing.T) {
	assert.NotNil(t, Tracer(""))
	assert.NotNil(t, Tracer("custom"))
}
