package ai

import (
	"context"
	"errors"
	"net"
	"strings"

	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"

	"github.com/gage-technologies/mistral-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// MistralProvider implements Provider for Mistral AI
type MistralProvider struct {
	client     *mistral.MistralClient
	model      string
	temp       float32
	maxRetries int
	breaker    *ProviderCircuitBreaker
	logger     *jobsniperErrors.Logger
	available  bool
}

// Ensure MistralProvider implements Provider
var _ Provider = (*MistralProvider)(nil)

// NewMistralProvider creates the Mistral provider. A missing or invalid
// key is not an error; the provider is created unavailable so the
// router can skip it.
func NewMistralProvider(cfg *config.Config, logger *jobsniperErrors.Logger) *MistralProvider {
	p := &MistralProvider{
		model:      cfg.AI.Mistral.Model,
		temp:       cfg.AI.Temperature,
		maxRetries: cfg.AI.MaxRetries,
		logger:     logger,
	}

	if !cfg.MistralAvailable() {
		logger.Debug("Mistral provider not configured, marking unavailable")
		return p
	}

	p.client = mistral.NewMistralClientDefault(cfg.AI.Mistral.APIKey)
	p.breaker = NewProviderCircuitBreaker(ProviderMistral, cfg.AI.CircuitBreaker, logger)
	p.available = true
	return p
}

func (m *MistralProvider) Name() string {
	return ProviderMistral
}

func (m *MistralProvider) Available() bool {
	return m.available
}

// Generate sends the prompt to Mistral and returns the response text
func (m *MistralProvider) Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error) {
	if !m.available {
		return "", nil, jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderUnavailable,
			"Mistral provider is not configured", nil)
	}

	tracer := otel.Tracer("jobsniper.ai.mistral")
	ctx, span := tracer.Start(ctx, "mistral.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", ProviderMistral),
		attribute.String("ai.model", m.model),
		attribute.Float64("ai.temperature", float64(m.temp)),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	var usage *types.TokenUsage

	text, err := m.breaker.Execute(func() (string, error) {
		res, err := executeWithRetry(ctx, m.logger, m.maxRetries, "mistral.generate",
			isRetryableMistralError,
			func() (*mistral.ChatCompletionResponse, error) {
				return m.chatWithContext(ctx, prompt)
			})
		if err != nil {
			return "", err
		}

		if len(res.Choices) == 0 {
			return "", jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderCallFailed,
				"Mistral returned no choices", nil)
		}

		usage = &types.TokenUsage{
			PromptTokens:     int32(res.Usage.PromptTokens),
			CompletionTokens: int32(res.Usage.CompletionTokens),
			TotalTokens:      int32(res.Usage.TotalTokens),
		}
		return res.Choices[0].Message.Content, nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, jobsniperErrors.NewProviderError(jobsniperErrors.ErrCodeProviderCallFailed,
			"Mistral generation failed", err)
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

// chatWithContext bridges the context-free Mistral client with
// cancellation. The underlying HTTP call keeps running after a timeout
// but its result is discarded.
func (m *MistralProvider) chatWithContext(ctx context.Context, prompt string) (*mistral.ChatCompletionResponse, error) {
	type chatResult struct {
		res *mistral.ChatCompletionResponse
		err error
	}

	ch := make(chan chatResult, 1)
	go func() {
		res, err := m.client.Chat(m.model, []mistral.ChatMessage{
			{Content: prompt, Role: mistral.RoleUser},
		}, &mistral.ChatRequestParams{
			Temperature: float64(m.temp),
		})
		ch <- chatResult{res: res, err: err}
	}()

	select {
	case result := <-ch:
		return result.res, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MistralProvider) Close() error {
	// Mistral client holds no persistent connections
	return nil
}

// isRetryableMistralError determines if an error should trigger a retry
func isRetryableMistralError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// The Mistral client surfaces HTTP status failures as formatted errors
	msg := err.Error()
	for _, marker := range []string{"429", "500", "502", "503", "504"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
