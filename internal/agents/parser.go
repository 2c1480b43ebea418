package agents

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	"jobsniper/internal/errors"
	"jobsniper/internal/observability"
	"jobsniper/internal/types"
)

var (
	skillPattern = regexp.MustCompile(`(?i)\b(Python|Java|C\+\+|AI|ML|SQL|NLP|Data Science|JavaScript|React|Node|AWS|Azure|HTML|CSS|Go|Rust|Docker|Kubernetes)\b`)
	namePattern  = regexp.MustCompile(`^([A-Z][a-z]+ [A-Z][a-z]+)`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	yearsPattern = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(of\s*)?experience`)
	seniorityRe  = regexp.MustCompile(`(?i)\b(senior|lead|manager|head|director)\b`)
	experiencedRe = regexp.MustCompile(`(?i)\b(years of experience|work experience|professional experience)\b`)

	educationPatterns = []string{
		"B.Tech", "M.Tech", "BSc", "MSc", "PhD", "Bachelor", "Master", "Degree",
	}
)

// ResumeParser extracts a structured profile from resume text.
// It never fails: malformed provider output degrades through the demo
// payload or, as a last resort, a heuristic text scan.
type ResumeParser struct {
	router  *ai.Router
	prompts config.PromptConfig
	logger  *errors.Logger
	metrics *observability.Metrics
}

// NewResumeParser creates a resume parser agent. metrics may be nil.
func NewResumeParser(router *ai.Router, prompts config.PromptConfig, logger *errors.Logger, metrics *observability.Metrics) *ResumeParser {
	return &ResumeParser{
		router:  router,
		prompts: prompts,
		logger:  logger,
		metrics: metrics,
	}
}

// Parse produces a profile for the given resume text
func (p *ResumeParser) Parse(ctx context.Context, resumeText string) types.ResumeProfile {
	prompt := buildParsePrompt(p.prompts, resumeText)

	result, err := p.router.Complete(ctx, ai.Request{
		Operation: "parse_resume",
		Prompt:    prompt,
		Schema:    profileSchema,
		Demo:      demoProfileJSON,
	})
	if err != nil {
		// Unreachable with a demo payload defined, kept as a floor
		p.logger.LogError(err, "Resume parsing degraded to heuristic scan")
		profile := heuristicParse(resumeText)
		profile.Provider = ai.ProviderDemo
		profile.Degraded = true
		return profile
	}

	var profile types.ResumeProfile
	if err := json.Unmarshal([]byte(result.Text), &profile); err != nil {
		p.logger.Warn("Failed to decode parsed profile, using heuristic scan",
			"provider", result.Provider,
			"error", err.Error())
		profile = heuristicParse(resumeText)
		profile.Provider = result.Provider
		profile.Degraded = true
		normalizeProfile(&profile)
		p.recordParsed(ctx)
		return profile
	}

	profile.Provider = result.Provider
	profile.Degraded = result.Degraded
	normalizeProfile(&profile)
	p.recordParsed(ctx)
	return profile
}

func (p *ResumeParser) recordParsed(ctx context.Context) {
	if p.metrics != nil {
		p.metrics.RecordBusinessMetric(ctx, "resume_parsed", true)
	}
}

// normalizeProfile fills defaults so every field is always present.
// Applying it twice yields the same result.
func normalizeProfile(profile *types.ResumeProfile) {
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = "Candidate"
	}
	if profile.Skills == nil {
		profile.Skills = types.StringList{}
	}
	if strings.TrimSpace(profile.Education) == "" {
		profile.Education = "Unknown"
	}
	if strings.TrimSpace(profile.Experience) == "" {
		profile.Experience = "Unknown"
	}
	if strings.TrimSpace(profile.Contact) == "" {
		profile.Contact = "example@email.com"
	}
	if profile.YearsOfExperience < 0 {
		profile.YearsOfExperience = 0
	}
}

// heuristicParse scans resume text with regular expressions. It is the
// floor under the whole parsing pipeline and never fails.
func heuristicParse(resumeText string) types.ResumeProfile {
	skills := types.StringList{}
	seen := make(map[string]struct{})
	for _, match := range skillPattern.FindAllString(resumeText, -1) {
		key := strings.ToLower(match)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, match)
	}

	name := "Candidate"
	if m := namePattern.FindStringSubmatch(resumeText); m != nil {
		name = m[1]
	}

	education := "Unknown"
	for _, pattern := range educationPatterns {
		if strings.Contains(strings.ToLower(resumeText), strings.ToLower(pattern)) {
			education = pattern
			break
		}
	}

	experience := "Fresher"
	if seniorityRe.MatchString(resumeText) {
		experience = "Senior"
	} else if experiencedRe.MatchString(resumeText) {
		experience = "Experienced"
	}

	years := 0
	if m := yearsPattern.FindStringSubmatch(resumeText); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil {
			years = parsed
		}
	} else if experience != "Fresher" {
		years = 2
	}

	contact := "example@email.com"
	if m := emailPattern.FindString(resumeText); m != "" {
		contact = m
	}

	return types.ResumeProfile{
		Name:              name,
		Skills:            skills,
		Education:         education,
		Experience:        experience,
		Contact:           contact,
		YearsOfExperience: types.FlexInt(years),
	}
}
