package cli

import (
	"fmt"
	"os"

	"jobsniper/internal/common"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] [job-description-file]",
	Short: "Score a resume against a job description",
	Long: `Score a resume against a job description. The resume is parsed into
a structured profile first, then matched for a 0-100 score, a letter
grade, and the matched and missing skills.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeText, err := readResume(cfg, logger, args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	jobData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	logger.Info("Starting job matching",
		"resume_chars", len(resumeText),
		"job_chars", len(jobData),
		"output_format", matchConfig.OutputFormat)

	controller, closeProviders := newController(cfg, logger)
	defer closeProviders()

	profile := controller.Parser().Parse(cmd.Context(), resumeText)
	match := controller.Matcher().Match(cmd.Context(), profile, string(jobData))

	if err := common.NewOutputHandler(logger).HandleOutput(match, matchConfig); err != nil {
		return fmt.Errorf("failed to write match output: %w", err)
	}

	logger.Info("Job matching completed",
		"score", int(match.MatchScore),
		"grade", match.Grade,
		"provider", match.Provider,
		"degraded", match.Degraded)
	return nil
}
