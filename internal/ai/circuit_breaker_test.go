package ai

import (
	"errors"
	"testing"
	"time"

	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
)

func testBreakerConfig(enabled bool) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          enabled,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestNewProviderCircuitBreakerDisabled(t *testing.T) {
	logger := jobsniperErrors.NewLogger(8)
	cb := NewProviderCircuitBreaker("gemini", testBreakerConfig(false), logger)
	if cb != nil {
		t.Fatal("expected nil breaker when disabled")
	}

	// nil breaker executes directly
	got, err := cb.Execute(func() (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Execute() = %q, want %q", got, "ok")
	}

	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	if stats := cb.GetStats(); stats["enabled"] != false {
		t.Errorf("GetStats()[enabled] = %v, want false", stats["enabled"])
	}
}

func TestProviderCircuitBreakerPassesThroughSuccess(t *testing.T) {
	logger := jobsniperErrors.NewLogger(8)
	cb := NewProviderCircuitBreaker("gemini", testBreakerConfig(true), logger)
	if cb == nil {
		t.Fatal("expected breaker when enabled")
	}

	got, err := cb.Execute(func() (string, error) { return "response", nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "response" {
		t.Errorf("Execute() = %q, want %q", got, "response")
	}
	if !cb.IsHealthy() {
		t.Error("breaker should be healthy after success")
	}
}

func TestProviderCircuitBreakerTripsAfterFailures(t *testing.T) {
	logger := jobsniperErrors.NewLogger(8)
	cb := NewProviderCircuitBreaker("mistral", testBreakerConfig(true), logger)

	boom := errors.New("backend down")
	for range 5 {
		_, _ = cb.Execute(func() (string, error) { return "", boom })
	}

	if cb.IsHealthy() {
		t.Error("breaker should be open after repeated failures")
	}

	// Calls while open fail fast without reaching the function
	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "late", nil
	})
	if err == nil {
		t.Error("Execute() error = nil, want open-state rejection")
	}
	if called {
		t.Error("function was called while breaker open")
	}

	stats := cb.GetStats()
	if stats["enabled"] != true {
		t.Errorf("GetStats()[enabled] = %v, want true", stats["enabled"])
	}
	if stats["state"] != "open" {
		t.Errorf("GetStats()[state] = %v, want open", stats["state"])
	}
}
