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

// SkillRecommender suggests skills and learning paths for a profile.
// It never fails; malformed provider output degrades through the demo
// payload.
type SkillRecommender struct {
	router  *ai.Router
	prompts config.PromptConfig
	logger  *errors.Logger
	metrics *observability.Metrics
}

// NewSkillRecommender creates a skill recommender agent. metrics may be nil.
func NewSkillRecommender(router *ai.Router, prompts config.PromptConfig, logger *errors.Logger, metrics *observability.Metrics) *SkillRecommender {
	return &SkillRecommender{
		router:  router,
		prompts: prompts,
		logger:  logger,
		metrics: metrics,
	}
}

// Recommend suggests skills for the profile, optionally steered toward
// a target role
func (r *SkillRecommender) Recommend(ctx context.Context, profile types.ResumeProfile, targetRole string) types.SkillRecommendations {
	profileJSON := marshalProfile(profile)
	prompt := buildRecommendPrompt(r.prompts, profileJSON, targetRole)

	result, err := r.router.Complete(ctx, ai.Request{
		Operation: "recommend_skills",
		Prompt:    prompt,
		Schema:    recommendationsSchema,
		Demo:      demoRecommendationsJSON,
	})
	if err != nil {
		r.logger.LogError(err, "Skill recommendation degraded to static defaults")
		recs := demoRecommendations()
		normalizeRecommendations(&recs)
		return recs
	}

	var recs types.SkillRecommendations
	if err := json.Unmarshal([]byte(result.Text), &recs); err != nil {
		r.logger.Warn("Failed to decode recommendations, using static defaults",
			"provider", result.Provider,
			"error", err.Error())
		recs = demoRecommendations()
		recs.Provider = result.Provider
		recs.Degraded = true
		normalizeRecommendations(&recs)
		return recs
	}

	recs.Provider = result.Provider
	recs.Degraded = result.Degraded
	normalizeRecommendations(&recs)

	if r.metrics != nil {
		r.metrics.RecordBusinessMetric(ctx, "skills_recommended", true)
	}
	return recs
}

func demoRecommendations() types.SkillRecommendations {
	var recs types.SkillRecommendations
	// The constant is well-formed; decoding cannot fail
	_ = json.Unmarshal([]byte(demoRecommendationsJSON), &recs)
	recs.Provider = ai.ProviderDemo
	recs.Degraded = true
	return recs
}

// normalizeRecommendations fills defaults so the result shape is
// always complete. An empty skill list falls back to the demo set so
// callers always have something to show.
func normalizeRecommendations(recs *types.SkillRecommendations) {
	if len(recs.RecommendedSkills) == 0 {
		fallback := demoRecommendations()
		recs.RecommendedSkills = fallback.RecommendedSkills
	}
	if recs.LearningPaths == nil {
		recs.LearningPaths = []types.LearningPath{}
	}
	for i := range recs.LearningPaths {
		if recs.LearningPaths[i].Resources == nil {
			recs.LearningPaths[i].Resources = types.StringList{}
		}
		if strings.TrimSpace(recs.LearningPaths[i].Level) == "" {
			recs.LearningPaths[i].Level = "beginner"
		}
	}
	if strings.TrimSpace(recs.Summary) == "" {
		recs.Summary = "General skill recommendations."
	}
}
