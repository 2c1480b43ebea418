package ai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client     *genai.Client
	model      string
	temp       float32
	maxRetries int
	breaker    *ProviderCircuitBreaker
	logger     *jobsniperErrors.Logger
	available  bool
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates the Gemini provider. A missing or invalid
// key is not an error; the provider is created unavailable so the
// router can skip it.
func NewGeminiProvider(cfg *config.Config, logger *jobsniperErrors.Logger) *GeminiProvider {
	p := &GeminiProvider{
		model:      cfg.AI.Gemini.Model,
		temp:       cfg.AI.Temperature,
		maxRetries: cfg.AI.MaxRetries,
		logger:     logger,
	}

	if !cfg.GeminiAvailable() {
		logger.Debug("Gemini provider not configured, marking unavailable")
		return p
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.AI.Gemini.APIKey,
	})
	if err != nil {
		logger.Warn("Failed to create Gemini client, marking unavailable", "error", err.Error())
		return p
	}

	p.client = client
	p.breaker = NewProviderCircuitBreaker(ProviderGemini, cfg.AI.CircuitBreaker, logger)
	p.available = true
	return p
}

func (g *GeminiProvider) Name() string {
	return ProviderGemini
}

func (g *GeminiProvider) Available() bool {
	return g.available
}

// Generate sends the prompt to Gemini and returns the response text
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error) {
	if !g.available {
		return "", nil, jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderUnavailable,
			"Gemini provider is not configured", nil)
	}

	tracer := otel.Tracer("jobsniper.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", ProviderGemini),
		attribute.String("ai.model", g.model),
		attribute.Float64("ai.temperature", float64(g.temp)),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	var usage *types.TokenUsage
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temp),
	}

	text, err := g.breaker.Execute(func() (string, error) {
		result, err := executeWithRetry(ctx, g.logger, g.maxRetries, "gemini.generate",
			isRetryableGeminiError,
			func() (*genai.GenerateContentResponse, error) {
				return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
			})
		if err != nil {
			return "", err
		}
		usage = extractGeminiTokenUsage(result)
		return result.Text(), nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderCallFailed,
			"Gemini generation failed", err)
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int("ai.tokens.input", int(usage.PromptTokens)),
			attribute.Int("ai.tokens.output", int(usage.CompletionTokens)),
			attribute.Int("ai.tokens.total", int(usage.TotalTokens)),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return text, usage, nil
}

func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// isRetryableGeminiError determines if an error should trigger a retry
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// extractGeminiTokenUsage extracts token usage from a Gemini response
func extractGeminiTokenUsage(result *genai.GenerateContentResponse) *types.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &types.TokenUsage{
		PromptTokens:     usage.PromptTokenCount,
		CompletionTokens: usage.CandidatesTokenCount,
		TotalTokens:      usage.TotalTokenCount,
	}
}
