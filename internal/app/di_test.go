package app

import (
	"context"
	"testing"
	"time"

	"github.com/allisson/entitygate/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:               "localhost",
		ServerPort:               8080,
		LogLevel:                 "error",
		DownstreamBaseURL:        "http://localhost:9000",
		DownstreamTimeout:        time.Second,
		DownstreamMaxRetries:     0,
		CacheTTL:                 time.Minute,
		RefreshInterval:          time.Minute,
		InitialFetchPolicy:       config.InitialFetchDegrade,
		InitialFetchTimeout:      time.Second,
		JWTHMACSecret:            "test-secret",
		MinimumGlobalRoles:       []string{"reader"},
		SessionEntitlementMaxAge: 15 * time.Minute,
		SessionSweepInterval:     time.Minute,
		RateLimitEnabled:         true,
		RateLimitRequestsPerSec:  10,
		RateLimitBurst:           20,
		MetricsEnabled:           false,
		MetricsNamespace:         "entitygate",
		MetricsPort:              8081,
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := testConfig()
	container := NewContainer(cfg)

	if container == nil {
		t.Fatal("expected non-nil container")
	}

	if container.Config() != cfg {
		t.Error("container config does not match provided config")
	}
}

// TestContainerLogger verifies that the logger can be retrieved from the container.
func TestContainerLogger(t *testing.T) {
	container := NewContainer(testConfig())

	logger := container.Logger()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Calling Logger() again should return the same instance (singleton)
	if container.Logger() != logger {
		t.Error("expected same logger instance on multiple calls")
	}
}

// TestContainerMetricsDisabled verifies that the metrics provider is nil and
// business metrics fall back to the no-op recorder when metrics are disabled.
func TestContainerMetricsDisabled(t *testing.T) {
	container := NewContainer(testConfig())

	provider, err := container.MetricsProvider()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Error("expected nil provider when metrics are disabled")
	}

	business, err := container.BusinessMetrics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if business == nil {
		t.Fatal("expected non-nil business metrics")
	}
}

// TestContainerSingletons verifies that components are created once and
// reused on subsequent access.
func TestContainerSingletons(t *testing.T) {
	container := NewContainer(testConfig())

	if container.SnapshotStore() != container.SnapshotStore() {
		t.Error("expected same snapshot store instance on multiple calls")
	}
	if container.SessionStore() != container.SessionStore() {
		t.Error("expected same session store instance on multiple calls")
	}
	if container.Fetcher() != container.Fetcher() {
		t.Error("expected same fetcher instance on multiple calls")
	}

	auth1, err := container.AuthUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	auth2, err := container.AuthUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth1 != auth2 {
		t.Error("expected same auth use case instance on multiple calls")
	}
}

// TestContainerVerifierError verifies that a verifier misconfiguration is
// reported on every access, not only the first.
func TestContainerVerifierError(t *testing.T) {
	cfg := testConfig()
	cfg.JWTHMACSecret = ""
	container := NewContainer(cfg)

	if _, err := container.Verifier(); err == nil {
		t.Fatal("expected error when no verification key is configured")
	}
	if _, err := container.Verifier(); err == nil {
		t.Fatal("expected error on second access")
	}
	if _, err := container.AuthUseCase(); err == nil {
		t.Fatal("expected auth use case to propagate verifier error")
	}
}

// TestContainerRegistry verifies that the registry is created with the
// built-in capabilities registered.
func TestContainerRegistry(t *testing.T) {
	container := NewContainer(testConfig())

	registry, err := container.Registry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make(map[string]bool)
	for _, descriptor := range registry.List() {
		names[descriptor.Name] = true
	}
	for _, name := range []string{"list_entities", "get_entity", "refresh_cache"} {
		if !names[name] {
			t.Errorf("expected built-in capability %q to be registered", name)
		}
	}
}

// TestContainerHTTPServer verifies that the full HTTP server dependency
// graph can be assembled.
func TestContainerHTTPServer(t *testing.T) {
	container := NewContainer(testConfig())

	server, err := container.HTTPServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server == nil {
		t.Fatal("expected non-nil HTTP server")
	}
	if server.GetHandler() == nil {
		t.Fatal("expected non-nil handler")
	}
}

// TestContainerShutdown verifies that shutdown succeeds even when only part
// of the dependency graph was initialized.
func TestContainerShutdown(t *testing.T) {
	container := NewContainer(testConfig())

	if _, err := container.HTTPServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := container.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

// TestContainerShutdownEmpty verifies that shutdown on a fresh container is
// a no-op.
func TestContainerShutdownEmpty(t *testing.T) {
	container := NewContainer(testConfig())

	if err := container.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
