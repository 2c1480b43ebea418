package agents

import (
	"context"
	"encoding/json"
	"strings"

	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	"jobsniper/internal/errors"
	"jobsniper/internal/observability"
	"jobsniper/internal/types"
)

// JobMatcher scores a candidate profile against a job description.
// Like the other agents it never fails; malformed provider output
// degrades through the demo payload.
type JobMatcher struct {
	router  *ai.Router
	prompts config.PromptConfig
	logger  *errors.Logger
	metrics *observability.Metrics
}

// NewJobMatcher creates a job matcher agent. metrics may be nil.
func NewJobMatcher(router *ai.Router, prompts config.PromptConfig, logger *errors.Logger, metrics *observability.Metrics) *JobMatcher {
	return &JobMatcher{
		router:  router,
		prompts: prompts,
		logger:  logger,
		metrics: metrics,
	}
}

// Match evaluates the profile against the job description
func (m *JobMatcher) Match(ctx context.Context, profile types.ResumeProfile, jobDescription string) types.JobMatch {
	profileJSON := marshalProfile(profile)
	prompt := buildMatchPrompt(m.prompts, profileJSON, jobDescription)

	result, err := m.router.Complete(ctx, ai.Request{
		Operation: "match_job",
		Prompt:    prompt,
		Schema:    matchSchema,
		Demo:      demoMatchJSON,
	})
	if err != nil {
		m.logger.LogError(err, "Job matching degraded to static estimate")
		match := demoMatch()
		normalizeMatch(&match)
		return match
	}

	var match types.JobMatch
	if err := json.Unmarshal([]byte(result.Text), &match); err != nil {
		m.logger.Warn("Failed to decode match result, using static estimate",
			"provider", result.Provider,
			"error", err.Error())
		match = demoMatch()
		match.Provider = result.Provider
		match.Degraded = true
		normalizeMatch(&match)
		return match
	}

	match.Provider = result.Provider
	match.Degraded = result.Degraded
	normalizeMatch(&match)

	if m.metrics != nil {
		m.metrics.RecordBusinessMetric(ctx, "job_matched", true)
	}
	return match
}

func demoMatch() types.JobMatch {
	var match types.JobMatch
	// The constant is well-formed; decoding cannot fail
	_ = json.Unmarshal([]byte(demoMatchJSON), &match)
	match.Provider = ai.ProviderDemo
	match.Degraded = true
	return match
}

// normalizeMatch clamps the score, derives a missing grade, and fills
// defaults. Applying it twice yields the same result.
func normalizeMatch(match *types.JobMatch) {
	if match.MatchScore < 0 {
		match.MatchScore = 0
	}
	if match.MatchScore > 100 {
		match.MatchScore = 100
	}
	if strings.TrimSpace(match.Grade) == "" {
		match.Grade = MatchGrade(int(match.MatchScore))
	}
	if match.MatchedSkills == nil {
		match.MatchedSkills = types.StringList{}
	}
	if match.MissingSkills == nil {
		match.MissingSkills = types.StringList{}
	}
	if strings.TrimSpace(match.Summary) == "" {
		match.Summary = "No detailed assessment available."
	}
}

// MatchGrade converts a match score to a letter grade
func MatchGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "C+"
	case score >= 65:
		return "C"
	default:
		return "D"
	}
}

func marshalProfile(profile types.ResumeProfile) string {
	// Strip routing annotations before embedding in a prompt
	clean := profile
	clean.Provider = ""
	clean.Degraded = false

	data, err := json.Marshal(clean)
	if err != nil {
		return "{}"
	}
	return string(data)
}
