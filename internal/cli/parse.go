package cli

import (
	"fmt"

	"jobsniper/internal/common"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Extract a structured profile from a resume",
	Long: `Extract a structured candidate profile (name, skills, education,
experience, contact) from a resume file. Supported input formats: PDF,
DOCX, and plain text.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeText, err := readResume(cfg, logger, args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	logger.Info("Starting resume parsing",
		"resume_chars", len(resumeText),
		"output_format", parseConfig.OutputFormat)

	controller, closeProviders := newController(cfg, logger)
	defer closeProviders()

	profile := controller.Parser().Parse(cmd.Context(), resumeText)

	if err := common.NewOutputHandler(logger).HandleOutput(profile, parseConfig); err != nil {
		return fmt.Errorf("failed to write profile output: %w", err)
	}

	logger.Info("Resume parsing completed",
		"provider", profile.Provider,
		"degraded", profile.Degraded)
	return nil
}
