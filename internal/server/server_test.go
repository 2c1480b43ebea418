package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobsniper/internal/agents"
	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/history"
	"jobsniper/internal/observability"
	"jobsniper/internal/types"
)

type testProvider struct {
	name      string
	available bool
	response  string
}

func (p *testProvider) Name() string    { return p.name }
func (p *testProvider) Available() bool { return p.available }
func (p *testProvider) Close() error    { return nil }

func (p *testProvider) Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error) {
	return p.response, nil, nil
}

func testServer(t *testing.T, providers ...ai.Provider) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	logger := jobsniperErrors.NewLogger(8)
	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "0"
	cfg.App.MaxFileSize = 1 << 20
	cfg.App.DefaultFormat = "json"

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager: %v", err)
	}

	srv := NewServer(cfg, "test", logger)
	srv.Router = ai.NewRouter(providers, 5*time.Second, logger, nil)
	srv.Controller = agents.NewController(srv.Router, config.PromptConfig{}, logger, nil)
	return srv, om
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAnalyzeHandlerFullPipeline(t *testing.T) {
	srv, om := testServer(t, &testProvider{
		name:      "gemini",
		available: true,
		response:  `{"name": "Jane Doe", "skills": ["Go"], "match_score": 80, "recommended_skills": ["Kubernetes"]}`,
	})
	handler := srv.createAnalyzeHandler(om)

	rec := postJSON(t, handler, `{"resumeText": "Jane Doe, Go engineer", "jobDescription": "Go role"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report types.AnalysisReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Profile.Name != "Jane Doe" {
		t.Errorf("Profile.Name = %q", report.Profile.Name)
	}
	if report.Match == nil {
		t.Error("Match = nil, want match result")
	}
	if report.Degraded {
		t.Error("Degraded = true, want false")
	}
}

func TestAnalyzeHandlerDegradesToDemo(t *testing.T) {
	srv, om := testServer(t,
		&testProvider{name: "gemini", available: false},
		&testProvider{name: "mistral", available: false},
	)
	handler := srv.createAnalyzeHandler(om)

	rec := postJSON(t, handler, `{"resumeText": "Jane Doe"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even in demo mode", rec.Code)
	}
	var report types.AnalysisReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !report.Degraded {
		t.Error("Degraded = false, want true")
	}
	if report.Profile.Provider != "demo" {
		t.Errorf("Provider = %q, want demo", report.Profile.Provider)
	}
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	srv, om := testServer(t, &testProvider{name: "gemini", available: true, response: "{}"})
	handler := srv.createAnalyzeHandler(om)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank resume", `{"resumeText": "   "}`},
		{"malformed json", `{"resumeText": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestMatchHandlerRequiresJobDescription(t *testing.T) {
	srv, om := testServer(t, &testProvider{name: "gemini", available: true, response: "{}"})
	handler := srv.createMatchHandler(om)

	rec := postJSON(t, handler, `{"resumeText": "Jane Doe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := testServer(t)
	srv.APIKeys = map[string]bool{"valid-key-12345678": true}

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"invalid key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"valid header key", map[string]string{"X-API-Key": "valid-key-12345678"}, http.StatusOK},
		{"valid bearer token", map[string]string{"Authorization": "Bearer valid-key-12345678"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareNoKeysConfigured(t *testing.T) {
	srv, _ := testServer(t)

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 without configured keys", rec.Code)
	}
}

func TestHealthHandlerDemoMode(t *testing.T) {
	srv, _ := testServer(t,
		&testProvider{name: "gemini", available: false},
		&testProvider{name: "mistral", available: false},
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
	if body["demo_mode"] != true {
		t.Errorf("demo_mode = %v, want true", body["demo_mode"])
	}
}

func TestStatsHandlerReportsUsage(t *testing.T) {
	srv, om := testServer(t, &testProvider{
		name:      "gemini",
		available: true,
		response:  `{"name": "Jane Doe", "recommended_skills": ["Go"]}`,
	})

	rec := postJSON(t, srv.createParseHandler(om), `{"resumeText": "Jane Doe"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	statsRec := httptest.NewRecorder()
	srv.statsHandler(statsRec, req)

	var body struct {
		Usage types.UsageStats `json:"usage"`
	}
	if err := json.Unmarshal(statsRec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Usage.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", body.Usage.TotalRequests)
	}
	if body.Usage.PerProvider["gemini"].Success != 1 {
		t.Errorf("gemini success = %d, want 1", body.Usage.PerProvider["gemini"].Success)
	}
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	limiter := NewRateLimiter(60, time.Minute, 2, jobsniperErrors.NewLogger(8))
	defer limiter.Close()

	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("first request denied, want allowed")
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("second request denied, burst capacity is 2")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("third request allowed, want denied past burst")
	}
	// Separate keys do not share buckets
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("other client denied, want allowed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.9:1234", "203.0.113.5"},
		{"x-real-ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "10.0.0.9:1234", "203.0.113.7"},
		{"remote addr", nil, "10.0.0.9:1234", "10.0.0.9"},
		{"invalid forwarded falls through", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.9:1234", "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("maskAPIKey(short) = %q", got)
	}
	if got := maskAPIKey("abcdefgh12345678"); got != "abcdefgh****" {
		t.Errorf("maskAPIKey = %q", got)
	}
}

func TestStartupPrunesExpiredHistory(t *testing.T) {
	logger := jobsniperErrors.NewLogger(8)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	seed, err := history.NewStore(dbPath, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	old := types.AnalysisReport{
		Profile:   types.ResumeProfile{Name: "Old Entry"},
		CreatedAt: time.Now().UTC().Add(-72 * time.Hour),
	}
	fresh := types.AnalysisReport{
		Profile:   types.ResumeProfile{Name: "Fresh Entry"},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := seed.Save(context.Background(), old); err != nil {
		t.Fatalf("Save old: %v", err)
	}
	if _, err := seed.Save(context.Background(), fresh); err != nil {
		t.Fatalf("Save fresh: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("Close seed store: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "0"
	cfg.App.MaxFileSize = 1 << 20
	cfg.AI.Timeout = time.Second
	cfg.History.Enabled = true
	cfg.History.Path = dbPath
	cfg.History.Retention = 24 * time.Hour
	cfg.Features = map[string]bool{"history": true}

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager: %v", err)
	}

	srv := NewServer(cfg, "test", logger)
	if err := srv.initializePipeline(om); err != nil {
		t.Fatalf("initializePipeline: %v", err)
	}
	defer srv.closePipeline()

	count, err := srv.History.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d after retention prune, want 1", count)
	}

	entries, err := srv.History.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if entries[0].Report.Profile.Name != "Fresh Entry" {
		t.Errorf("surviving entry = %q, want Fresh Entry", entries[0].Report.Profile.Name)
	}
}
