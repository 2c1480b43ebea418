package cli

import (
	"fmt"

	"jobsniper/internal/common"

	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [resume-file]",
	Short: "Recommend skills and learning paths for a candidate",
	Long: `Recommend skills to learn based on a resume, optionally steered
toward a target role. The resume is parsed into a structured profile
first; recommendations include learning paths with resources.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if recommendConfig.OutputFormat == "" {
			recommendConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(recommendConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRecommend,
}

var (
	recommendConfig common.CommandConfig
	recommendRole   string
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	recommendCmd.Flags().StringVar(&recommendConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	recommendCmd.Flags().StringVarP(&recommendRole, "role", "r", "", "Target role to steer recommendations")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeText, err := readResume(cfg, logger, args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	logger.Info("Starting skill recommendation",
		"resume_chars", len(resumeText),
		"target_role", recommendRole,
		"output_format", recommendConfig.OutputFormat)

	controller, closeProviders := newController(cfg, logger)
	defer closeProviders()

	profile := controller.Parser().Parse(cmd.Context(), resumeText)
	recs := controller.Recommender().Recommend(cmd.Context(), profile, recommendRole)

	if err := common.NewOutputHandler(logger).HandleOutput(recs, recommendConfig); err != nil {
		return fmt.Errorf("failed to write recommendations output: %w", err)
	}

	logger.Info("Skill recommendation completed",
		"skill_count", len(recs.RecommendedSkills),
		"provider", recs.Provider,
		"degraded", recs.Degraded)
	return nil
}
