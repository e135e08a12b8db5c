package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric matching
// the given name, partial label pattern, and value. Uses regex to handle extra
// OTel scope labels injected by the Prometheus exporter.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)
	body, err := io.ReadAll(recorder.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	bm.RecordOperation(context.Background(), "cache", "refresh", "success")
	bm.RecordOperation(context.Background(), "cache", "refresh", "success")
	bm.RecordOperation(context.Background(), "auth", "resolve_entitlements", "error")

	output := scrape(t, provider)
	assertMetricLine(t, output, "test_app_operations_total", `domain="cache",operation="refresh",status="success"`, "2")
	assertMetricLine(t, output, "test_app_operations_total", `domain="auth",operation="resolve_entitlements",status="error"`, "1")
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	// Should not panic and should show up in the scrape
	bm.RecordDuration(context.Background(), "capability", "invoke", 42*time.Millisecond, "success")

	output := scrape(t, provider)
	assert.Contains(t, output, "test_app_operation_duration_seconds")
}

func TestBusinessMetrics_RecordAuthzDecision(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	bm.RecordAuthzDecision(context.Background(), "global-access", "deny")
	bm.RecordAuthzDecision(context.Background(), "invocation-permission", "allow")

	output := scrape(t, provider)
	assertMetricLine(t, output, "test_app_authz_decisions_total", `decision="deny",layer="global-access"`, "1")
	assertMetricLine(t, output, "test_app_authz_decisions_total", `decision="allow",layer="invocation-permission"`, "1")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// All recorders are safe to call with metrics disabled.
	bm.RecordOperation(context.Background(), "cache", "refresh", "success")
	bm.RecordDuration(context.Background(), "cache", "refresh", time.Second, "success")
	bm.RecordAuthzDecision(context.Background(), "global-access", "allow")
}
