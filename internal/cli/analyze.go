package cli

import (
	"fmt"
	"os"

	"jobsniper/internal/common"
	"jobsniper/internal/history"
	"jobsniper/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Run the full analysis pipeline on a resume",
	Long: `Run the full analysis pipeline on a resume: parse a structured
profile, optionally score it against a job description, and recommend
skills to learn. Supported input formats: PDF, DOCX, and plain text.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeJobFile string
	analyzeRole    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job", "j", "", "Job description file to score the resume against")
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Target role to steer skill recommendations")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeText, err := readResume(cfg, logger, args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	jobDescription := ""
	if analyzeJobFile != "" {
		data, err := os.ReadFile(analyzeJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		jobDescription = string(data)
	}

	logger.Info("Starting resume analysis",
		"resume_chars", len(resumeText),
		"job_chars", len(jobDescription),
		"target_role", analyzeRole,
		"output_format", analyzeConfig.OutputFormat)

	controller, closeProviders := newController(cfg, logger)
	defer closeProviders()

	report := controller.Run(cmd.Context(), types.AnalysisRequest{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		TargetRole:     analyzeRole,
	})

	if cfg.History.Enabled && cfg.Features["history"] {
		store, err := history.NewStore(cfg.History.Path, logger)
		if err != nil {
			logger.LogError(err, "Failed to open analysis history")
		} else {
			defer store.Close()
			if _, err := store.Save(cmd.Context(), report); err != nil {
				logger.LogError(err, "Failed to persist analysis report")
			}
		}
	}

	if err := common.NewOutputHandler(logger).HandleOutput(report, analyzeConfig); err != nil {
		return fmt.Errorf("failed to write analysis output: %w", err)
	}

	logger.Info("Resume analysis completed",
		"degraded", report.Degraded,
		"parse_provider", report.Profile.Provider)
	return nil
}
