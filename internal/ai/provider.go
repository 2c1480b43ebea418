package ai

import (
	"context"

	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"
)

// Provider names used in priority lists, stats, and result annotations
const (
	ProviderGemini  = "gemini"
	ProviderMistral = "mistral"
	ProviderDemo    = "demo"
)

// Provider is a single AI backend. Providers are constructed once at
// startup and are immutable afterwards; an unconfigured provider still
// exists but reports Available() == false.
type Provider interface {
	// Name returns the provider identifier ("gemini", "mistral")
	Name() string

	// Available reports whether the provider is configured with a
	// syntactically valid key and a working client
	Available() bool

	// Generate sends a prompt and returns the raw response text.
	// Token usage may be nil when the backend does not report it.
	Generate(ctx context.Context, prompt string) (string, *types.TokenUsage, error)

	// Close releases any underlying client resources
	Close() error
}

// BuildProviders constructs the provider chain in the configured
// priority order. Unknown names are skipped; unavailable providers are
// still included so the router can report their health.
func BuildProviders(cfg *config.Config, logger *jobsniperErrors.Logger) []Provider {
	providers := make([]Provider, 0, len(cfg.AI.Priority))
	for _, name := range cfg.AI.Priority {
		switch name {
		case ProviderGemini:
			providers = append(providers, NewGeminiProvider(cfg, logger))
		case ProviderMistral:
			providers = append(providers, NewMistralProvider(cfg, logger))
		default:
			logger.Warn("Ignoring unknown provider in priority list", "provider", name)
		}
	}
	return providers
}
