package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("credentials")
	require.NoError(t, err)
	require.NotNil(t, provider)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	assert.NotNil(t, provider.Handler())
	assert.NotNil(t, provider.MeterProvider())
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("credentials")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "credentials")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "rotation", "rotate", "success")
	bm.RecordDuration(ctx, "rotation", "rotate", 25*time.Millisecond, "success")

	// Metrics appear in the Prometheus exposition output
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	provider.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "credentials_operations_total")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// Must not panic
	bm.RecordOperation(context.Background(), "registry", "key_create", "success")
	bm.RecordDuration(context.Background(), "registry", "key_create", time.Second, "error")
}
