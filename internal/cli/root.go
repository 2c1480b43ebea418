package cli

import (
	"context"

	"jobsniper/internal/agents"
	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	"jobsniper/internal/errors"
	"jobsniper/internal/extract"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "jobsniper",
	Short: "A CLI tool for AI-driven resume analysis",
	Long: `JobSniper analyzes resumes with AI: it extracts a structured candidate
profile, scores the profile against a job description, and recommends
skills to learn. When no AI provider is configured the tool still works
in demo mode with static results.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newController builds the provider chain and agent controller for one
// CLI invocation. The returned closer releases provider clients.
func newController(cfg *config.Config, logger *errors.Logger) (*agents.Controller, func()) {
	providers := ai.BuildProviders(cfg, logger)
	router := ai.NewRouter(providers, cfg.AI.Timeout, logger, nil)
	controller := agents.NewController(router, cfg.AI.Prompts, logger, nil)

	closer := func() {
		if err := router.Close(); err != nil {
			logger.LogError(err, "Failed to close provider chain")
		}
	}
	return controller, closer
}

// readResume extracts plain text from a resume file
func readResume(cfg *config.Config, logger *errors.Logger, path string) (string, error) {
	extractor := extract.NewExtractor(logger, cfg.App.MaxFileSize)
	return extractor.ExtractFile(path)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
