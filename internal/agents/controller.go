package agents

import (
	"context"
	"time"

	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	"jobsniper/internal/errors"
	"jobsniper/internal/observability"
	"jobsniper/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Controller runs the full analysis pipeline: parse first, then match
// and recommend sequentially against the parsed profile. Downstream
// agents always run, even when parsing degraded to the demo profile.
type Controller struct {
	parser      *ResumeParser
	matcher     *JobMatcher
	recommender *SkillRecommender
	logger      *errors.Logger
	metrics     *observability.Metrics
}

// NewController wires the three agents over a shared router
func NewController(router *ai.Router, prompts config.PromptConfig, logger *errors.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		parser:      NewResumeParser(router, prompts, logger, metrics),
		matcher:     NewJobMatcher(router, prompts, logger, metrics),
		recommender: NewSkillRecommender(router, prompts, logger, metrics),
		logger:      logger,
		metrics:     metrics,
	}
}

// Parser returns the underlying resume parser agent
func (c *Controller) Parser() *ResumeParser { return c.parser }

// Matcher returns the underlying job matcher agent
func (c *Controller) Matcher() *JobMatcher { return c.matcher }

// Recommender returns the underlying skill recommender agent
func (c *Controller) Recommender() *SkillRecommender { return c.recommender }

// Run executes the pipeline for one request. It never returns an
// error: every stage has a static floor, so the worst outcome is a
// fully degraded report.
func (c *Controller) Run(ctx context.Context, req types.AnalysisRequest) types.AnalysisReport {
	tracer := otel.Tracer("jobsniper.agents.controller")
	ctx, span := tracer.Start(ctx, "controller.run")
	defer span.End()

	span.SetAttributes(
		attribute.Int("input.resume_length", len(req.ResumeText)),
		attribute.Bool("input.has_job_description", req.JobDescription != ""),
	)

	report := types.AnalysisReport{
		CreatedAt: time.Now().UTC(),
	}

	report.Profile = c.parser.Parse(ctx, req.ResumeText)

	if req.JobDescription != "" {
		match := c.matcher.Match(ctx, report.Profile, req.JobDescription)
		report.Match = &match
	}

	report.Recommendations = c.recommender.Recommend(ctx, report.Profile, req.TargetRole)

	report.Degraded = report.Profile.Degraded ||
		(report.Match != nil && report.Match.Degraded) ||
		report.Recommendations.Degraded

	span.SetAttributes(
		attribute.Bool("output.degraded", report.Degraded),
		attribute.String("output.parse_provider", report.Profile.Provider),
	)

	if c.metrics != nil {
		c.metrics.RecordBusinessMetric(ctx, "analysis_completed", true)
		if report.Degraded {
			c.metrics.RecordBusinessMetric(ctx, "analysis_degraded", true)
		}
	}

	c.logger.Info("Analysis pipeline completed",
		"parse_provider", report.Profile.Provider,
		"degraded", report.Degraded,
		"matched", report.Match != nil)

	return report
}
