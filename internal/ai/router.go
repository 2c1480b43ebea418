package ai

import (
	"context"
	"regexp"
	"sync"
	"time"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/observability"
	"jobsniper/internal/types"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// jsonPattern extracts the outermost JSON object from provider output
// that may be wrapped in prose or markdown fences
var jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Request is one routed generation request
type Request struct {
	// Operation names the calling agent for logging and metrics
	Operation string

	Prompt string

	// Schema is an optional JSON schema document. Validation is
	// best-effort: an invalid response counts as a provider failure
	// and triggers fallback to the next provider.
	Schema string

	// Demo is the static payload returned when every provider fails
	// or none is configured. An empty Demo turns exhaustion into an
	// error instead.
	Demo string
}

// Result carries the response text annotated with its producer
type Result struct {
	Text     string
	Provider string
	Degraded bool
	Usage    *types.TokenUsage
}

// Router tries providers in strict priority order and falls back to a
// static demo payload when all of them fail. Providers are never
// called concurrently for a single request; the first success wins.
type Router struct {
	providers []Provider
	timeout   time.Duration
	logger    *jobsniperErrors.Logger
	metrics   *observability.Metrics

	mu            sync.Mutex
	totalRequests int64
	perProvider   map[string]*types.ProviderStats
}

// NewRouter creates a router over the given providers. The slice order
// is the priority order. metrics may be nil.
func NewRouter(providers []Provider, timeout time.Duration, logger *jobsniperErrors.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		providers:   providers,
		timeout:     timeout,
		logger:      logger,
		metrics:     metrics,
		perProvider: make(map[string]*types.ProviderStats),
	}
}

// Complete routes the request through the provider chain.
// The returned error is non-nil only when all providers failed AND no
// demo payload was supplied; the demo fallback itself is a success
// with Degraded set.
func (r *Router) Complete(ctx context.Context, req Request) (Result, error) {
	tracer := otel.Tracer("jobsniper.ai.router")
	ctx, span := tracer.Start(ctx, "router.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.operation", req.Operation),
		attribute.Int("ai.prompt_length", len(req.Prompt)),
	)

	r.mu.Lock()
	r.totalRequests++
	r.mu.Unlock()

	var lastErr error
	for _, provider := range r.providers {
		if !provider.Available() {
			r.logger.Debug("Skipping unavailable provider",
				"provider", provider.Name(),
				"operation", req.Operation)
			continue
		}

		result, err := r.tryProvider(ctx, provider, req)
		if err != nil {
			lastErr = err
			continue
		}

		span.SetAttributes(
			attribute.String("ai.provider_used", result.Provider),
			attribute.Bool("ai.degraded", false),
		)
		return result, nil
	}

	// All providers failed or none is configured
	if req.Demo != "" {
		r.logger.Warn("All providers exhausted, serving demo payload",
			"operation", req.Operation,
			"last_error", errString(lastErr))
		if r.metrics != nil {
			r.metrics.RecordFallback(ctx, req.Operation)
		}
		span.SetAttributes(
			attribute.String("ai.provider_used", ProviderDemo),
			attribute.Bool("ai.degraded", true),
		)
		return Result{
			Text:     req.Demo,
			Provider: ProviderDemo,
			Degraded: true,
		}, nil
	}

	err := jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderUnavailable,
		"no provider produced a response and no fallback payload is defined", lastErr).
		WithContext("operation", req.Operation)
	span.RecordError(err)
	return Result{}, err
}

// tryProvider makes a single bounded attempt against one provider
func (r *Router) tryProvider(ctx context.Context, provider Provider, req Request) (Result, error) {
	name := provider.Name()
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	text, usage, err := provider.Generate(callCtx, req.Prompt)
	cancel()

	duration := time.Since(start)
	if r.metrics != nil {
		r.metrics.RecordProviderAttempt(ctx, name, err == nil, duration)
	}

	if err != nil {
		r.recordAttempt(name, false)
		r.logger.Warn("Provider attempt failed",
			"provider", name,
			"operation", req.Operation,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return Result{}, err
	}

	jsonText := jsonPattern.FindString(text)
	if jsonText == "" {
		r.recordAttempt(name, false)
		shapeErr := jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeResponseShape,
			"provider response contains no JSON object", nil).
			WithContext("provider", name)
		r.logger.Warn("Provider response has no JSON object",
			"provider", name,
			"operation", req.Operation,
			"response_length", len(text))
		return Result{}, shapeErr
	}

	if req.Schema != "" {
		valid, validErr := gojsonschema.Validate(
			gojsonschema.NewStringLoader(req.Schema),
			gojsonschema.NewStringLoader(jsonText),
		)
		if validErr != nil || !valid.Valid() {
			r.recordAttempt(name, false)
			shapeErr := jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeResponseShape,
				"provider response does not match expected shape", validErr).
				WithContext("provider", name)
			r.logger.Warn("Provider response failed shape validation",
				"provider", name,
				"operation", req.Operation)
			return Result{}, shapeErr
		}
	}

	r.recordAttempt(name, true)
	if r.metrics != nil && usage != nil {
		r.metrics.RecordTokenUsage(ctx, name, usage)
	}

	r.logger.Info("Provider attempt succeeded",
		"provider", name,
		"operation", req.Operation,
		"duration_ms", duration.Milliseconds())

	return Result{
		Text:     jsonText,
		Provider: name,
		Usage:    usage,
	}, nil
}

func (r *Router) recordAttempt(provider string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.perProvider[provider]
	if !ok {
		stats = &types.ProviderStats{}
		r.perProvider[provider] = stats
	}
	if success {
		stats.Success++
	} else {
		stats.Fail++
	}
}

// Stats returns a snapshot of provider usage counters
func (r *Router) Stats() types.UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := types.UsageStats{
		TotalRequests: r.totalRequests,
		PerProvider:   make(map[string]types.ProviderStats, len(r.perProvider)),
	}
	for name, stats := range r.perProvider {
		out.PerProvider[name] = *stats
	}
	return out
}

// Health reports configured availability per provider
func (r *Router) Health() map[string]bool {
	health := make(map[string]bool, len(r.providers))
	for _, p := range r.providers {
		health[p.Name()] = p.Available()
	}
	return health
}

// Close releases all provider resources
func (r *Router) Close() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
