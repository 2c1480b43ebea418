package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"
)

// fakeProvider is a scriptable provider for router tests
type fakeProvider struct {
	name      string
	available bool
	response  string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) Close() error    { return nil }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error) {
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.response, &types.TokenUsage{TotalTokens: 10}, nil
}

func newTestRouter(providers ...Provider) *Router {
	logger := jobsniperErrors.NewLogger(8) // above error level, quiet tests
	return NewRouter(providers, 5*time.Second, logger, nil)
}

const demoPayload = `{"name": "Demo", "skills": []}`

func TestRouterFirstSuccessShortCircuits(t *testing.T) {
	first := &fakeProvider{name: "gemini", available: true, response: `{"name": "From Gemini"}`}
	second := &fakeProvider{name: "mistral", available: true, response: `{"name": "From Mistral"}`}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != "gemini" {
		t.Errorf("Provider = %q, want %q", result.Provider, "gemini")
	}
	if first.calls != 1 {
		t.Errorf("first provider calls = %d, want 1", first.calls)
	}
	if second.calls != 0 {
		t.Errorf("second provider calls = %d, want 0 (short circuit)", second.calls)
	}
	if result.Degraded {
		t.Error("Degraded = true, want false for a real provider response")
	}
}

func TestRouterFallsBackToNextProvider(t *testing.T) {
	first := &fakeProvider{name: "gemini", available: true, err: errors.New("quota exceeded")}
	second := &fakeProvider{name: "mistral", available: true, response: `{"name": "From Mistral"}`}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != "mistral" {
		t.Errorf("Provider = %q, want %q", result.Provider, "mistral")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", first.calls, second.calls)
	}
}

// hangingProvider blocks until its call context expires
type hangingProvider struct {
	name  string
	calls int
}

func (h *hangingProvider) Name() string    { return h.name }
func (h *hangingProvider) Available() bool { return true }
func (h *hangingProvider) Close() error    { return nil }

func (h *hangingProvider) Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error) {
	h.calls++
	<-ctx.Done()
	return "", nil, ctx.Err()
}

func TestRouterTimeoutFallsBackToNextProvider(t *testing.T) {
	hanging := &hangingProvider{name: "gemini"}
	second := &fakeProvider{name: "mistral", available: true, response: `{"name": "From Mistral"}`}

	logger := jobsniperErrors.NewLogger(8)
	router := NewRouter([]Provider{hanging, second}, 50*time.Millisecond, logger, nil)

	start := time.Now()
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != "mistral" {
		t.Errorf("Provider = %q, want %q after timeout", result.Provider, "mistral")
	}
	if result.Degraded {
		t.Error("Degraded = true, want false for a real provider response")
	}
	if hanging.calls != 1 {
		t.Errorf("hanging provider calls = %d, want 1", hanging.calls)
	}
	if second.calls != 1 {
		t.Errorf("second provider calls = %d, want 1", second.calls)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Complete() took %v, want the timed-out attempt bounded by the per-call timeout", elapsed)
	}

	stats := router.Stats()
	if got := stats.PerProvider["gemini"].Fail; got != 1 {
		t.Errorf("gemini failures = %d, want 1 for the timed-out attempt", got)
	}
}

func TestRouterAllProvidersFailServesDemo(t *testing.T) {
	first := &fakeProvider{name: "gemini", available: true, err: errors.New("boom")}
	second := &fakeProvider{name: "mistral", available: true, err: errors.New("boom")}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v, fallback must not be an error", err)
	}

	if result.Provider != ProviderDemo {
		t.Errorf("Provider = %q, want %q", result.Provider, ProviderDemo)
	}
	if result.Text != demoPayload {
		t.Errorf("Text = %q, want exact demo payload", result.Text)
	}
	if !result.Degraded {
		t.Error("Degraded = false, want true for demo fallback")
	}
}

func TestRouterNoProvidersConfiguredServesDemo(t *testing.T) {
	first := &fakeProvider{name: "gemini", available: false}
	second := &fakeProvider{name: "mistral", available: false}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != ProviderDemo {
		t.Errorf("Provider = %q, want %q", result.Provider, ProviderDemo)
	}
	if first.calls != 0 || second.calls != 0 {
		t.Errorf("unavailable providers were called: (%d, %d)", first.calls, second.calls)
	}
}

func TestRouterExhaustionWithoutDemoIsError(t *testing.T) {
	provider := &fakeProvider{name: "gemini", available: true, err: errors.New("boom")}

	router := newTestRouter(provider)
	_, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
	})
	if err == nil {
		t.Fatal("Complete() error = nil, want error when no demo payload is defined")
	}

	var appErr *jobsniperErrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error type = %T, want *AppError", err)
	}
	if appErr.Code != jobsniperErrors.ErrCodeProviderUnavailable {
		t.Errorf("error code = %q, want %q", appErr.Code, jobsniperErrors.ErrCodeProviderUnavailable)
	}
}

func TestRouterExtractsJSONFromProse(t *testing.T) {
	provider := &fakeProvider{
		name:      "gemini",
		available: true,
		response:  "Here is the result:\n```json\n{\"name\": \"Jane Doe\"}\n```\nHope this helps!",
	}

	router := newTestRouter(provider)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Text != `{"name": "Jane Doe"}` {
		t.Errorf("Text = %q, want extracted JSON object", result.Text)
	}
}

func TestRouterNonJSONResponseFallsThrough(t *testing.T) {
	first := &fakeProvider{name: "gemini", available: true, response: "I cannot help with that."}
	second := &fakeProvider{name: "mistral", available: true, response: `{"name": "ok"}`}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "parse this",
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != "mistral" {
		t.Errorf("Provider = %q, want %q after shape failure", result.Provider, "mistral")
	}
}

func TestRouterSchemaValidationFallsThrough(t *testing.T) {
	schema := `{
		"type": "object",
		"properties": {
			"match_score": {"type": "number"}
		},
		"required": ["match_score"]
	}`

	first := &fakeProvider{name: "gemini", available: true, response: `{"unrelated": true}`}
	second := &fakeProvider{name: "mistral", available: true, response: `{"match_score": 80}`}

	router := newTestRouter(first, second)
	result, err := router.Complete(context.Background(), Request{
		Operation: "test",
		Prompt:    "match this",
		Schema:    schema,
		Demo:      demoPayload,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if result.Provider != "mistral" {
		t.Errorf("Provider = %q, want %q after schema failure", result.Provider, "mistral")
	}
}

func TestRouterStats(t *testing.T) {
	failing := &fakeProvider{name: "gemini", available: true, err: errors.New("boom")}
	working := &fakeProvider{name: "mistral", available: true, response: `{"ok": true}`}

	router := newTestRouter(failing, working)
	for range 3 {
		if _, err := router.Complete(context.Background(), Request{
			Operation: "test",
			Prompt:    "go",
			Demo:      demoPayload,
		}); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}

	stats := router.Stats()
	if stats.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", stats.TotalRequests)
	}
	if got := stats.PerProvider["gemini"].Fail; got != 3 {
		t.Errorf("gemini failures = %d, want 3", got)
	}
	if got := stats.PerProvider["mistral"].Success; got != 3 {
		t.Errorf("mistral successes = %d, want 3", got)
	}
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(
		&fakeProvider{name: "gemini", available: true},
		&fakeProvider{name: "mistral", available: false},
	)

	health := router.Health()
	if !health["gemini"] {
		t.Error("health[gemini] = false, want true")
	}
	if health["mistral"] {
		t.Error("health[mistral] = true, want false")
	}
}
