package tracer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/tracer"
)

func TestSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOffSampler", tracer.Sampler(0).Description())
	assert.Equal(t, "AlwaysOffSampler", tracer.Sampler(-1).Description())
	assert.Equal(t, "AlwaysOnSampler", tracer.Sampler(1).Description())
	assert.Equal(t, "TraceIDRatioBased{0.25}", tracer.Sampler(0.25).Description())
}

func TestInit_DisabledStillPropagates(t *testing.T) {
	ctx := context.Background()
	tp, err := tracer.Init(ctx, config.TracingConfig{Enabled: false}, config.AppConfig{Name: "medqueue"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := otel.Tracer("test").Start(ctx, "noop")
	assert.False(t, span.IsRecording())
	span.End()

	carrier := propagation.MapCarrier{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
	extracted := otel.GetTextMapPropagator().Extract(ctx, carrier)
	out := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(extracted, out)
	assert.Equal(t, carrier["traceparent"], out["traceparent"])
}
