package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_StdoutFallback(t *testing.T) {
	provider, err := NewProvider(ProviderOptions{
		ServiceName: "quickplate-test",
	})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	ctx, span := provider.StartSpan(context.Background(), "api.ListMeals")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttribute("http.method", "GET")
	span.SetAttribute("http.status_code", 200)
	span.SetAttribute("retryable", false)
	span.SetAttribute("elapsed", 1.5)
	span.RecordError(errors.New("boom"))
	span.End()
}

func TestProvider_RecordMetricCachesInstruments(t *testing.T) {
	provider, err := NewProvider(ProviderOptions{ServiceName: "quickplate-test"})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	labels := map[string]string{"op": "api.Login", "status": "200"}
	provider.RecordMetric("api.request.duration_ms", 12, labels)
	provider.RecordMetric("api.request.duration_ms", 15, labels)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Len(t, provider.histograms, 1)
}

func TestNewProvider_DefaultsSamplingRate(t *testing.T) {
	provider, err := NewProvider(ProviderOptions{SamplingRate: -3})
	require.NoError(t, err)
	_ = provider.Shutdown(context.Background())
}

func TestInstrumentTransport(t *testing.T) {
	rt := InstrumentTransport(nil)
	require.NotNil(t, rt)

	base := http.DefaultTransport
	assert.NotEqual(t, base, InstrumentTransport(base))
}
