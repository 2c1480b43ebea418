package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// StringList is a []string that also accepts a single comma-separated
// string when unmarshaling. AI providers return either form.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	if strings.TrimSpace(single) == "" {
		*s = StringList{}
		return nil
	}

	parts := strings.Split(single, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*s = out
	return nil
}

// FlexInt is an int that also accepts a quoted number or a string with
// a leading number ("5 years") when unmarshaling.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	var fl float64
	if err := json.Unmarshal(data, &fl); err == nil {
		*f = FlexInt(fl)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = 0
		return nil
	}

	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		*f = 0
		return nil
	}

	parsed, err := strconv.Atoi(s[:end])
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(parsed)
	return nil
}

// TokenUsage captures token accounting for a single provider call
type TokenUsage struct {
	PromptTokens     int32 `json:"promptTokens"`
	CompletionTokens int32 `json:"completionTokens"`
	TotalTokens      int32 `json:"totalTokens"`
}

// AnalysisRequest is the per-request input to the analysis pipeline
type AnalysisRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription,omitempty"`
	TargetRole     string `json:"targetRole,omitempty"`
}

// ResumeProfile is the structured result of parsing a resume
type ResumeProfile struct {
	Name              string     `json:"name"`
	Skills            StringList `json:"skills"`
	Education         string     `json:"education"`
	Experience        string     `json:"experience"`
	Contact           string     `json:"contact"`
	YearsOfExperience FlexInt    `json:"years_of_experience"`
	Provider          string     `json:"provider,omitempty"`
	Degraded          bool       `json:"degraded,omitempty"`
}

// JobMatch is the result of matching a profile against a job description
type JobMatch struct {
	MatchScore    FlexInt    `json:"match_score"`
	Grade         string     `json:"grade"`
	MatchedSkills StringList `json:"matched_skills"`
	MissingSkills StringList `json:"missing_skills"`
	Summary       string     `json:"summary"`
	Provider      string     `json:"provider,omitempty"`
	Degraded      bool       `json:"degraded,omitempty"`
}

// LearningPath describes a suggested route to acquire one skill
type LearningPath struct {
	Skill     string     `json:"skill"`
	Level     string     `json:"level"`
	Resources StringList `json:"resources"`
	Duration  string     `json:"duration"`
}

// SkillRecommendations is the result of the skill recommendation agent
type SkillRecommendations struct {
	RecommendedSkills StringList     `json:"recommended_skills"`
	LearningPaths     []LearningPath `json:"learning_paths"`
	Summary           string         `json:"summary"`
	Provider          string         `json:"provider,omitempty"`
	Degraded          bool           `json:"degraded,omitempty"`
}

// AnalysisReport aggregates the full pipeline output
type AnalysisReport struct {
	Profile         ResumeProfile        `json:"profile"`
	Match           *JobMatch            `json:"match,omitempty"`
	Recommendations SkillRecommendations `json:"recommendations"`
	Degraded        bool                 `json:"degraded"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// ProviderStats holds success/fail counters for one provider
type ProviderStats struct {
	Success int64 `json:"success"`
	Fail    int64 `json:"fail"`
}

// UsageStats aggregates router-level provider usage
type UsageStats struct {
	TotalRequests int64                    `json:"totalRequests"`
	PerProvider   map[string]ProviderStats `json:"perProvider"`
}
