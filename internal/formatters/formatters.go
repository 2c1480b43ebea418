package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobsniper/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ResumeProfile", &ProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeProfile", &ProfileMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobMatch", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "JobMatch", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "SkillRecommendations", &RecommendationsTextFormatter{})
	registry.RegisterFormatter("markdown", "SkillRecommendations", &RecommendationsMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &ReportMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeProfile:
		return "ResumeProfile"
	case types.JobMatch:
		return "JobMatch"
	case types.SkillRecommendations:
		return "SkillRecommendations"
	case types.AnalysisReport:
		return "AnalysisReport"
	default:
		return "any"
	}
}

func degradedNotice(degraded bool) string {
	if degraded {
		return "NOTE: produced from static demo data, AI providers were unavailable.\n\n"
	}
	return ""
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ProfileTextFormatter handles text formatting for parsed profiles
type ProfileTextFormatter struct{}

func (ptf *ProfileTextFormatter) Format(data any) (string, error) {
	profile, ok := data.(types.ResumeProfile)
	if !ok {
		return "", fmt.Errorf("expected ResumeProfile, got %T", data)
	}

	var output strings.Builder

	output.WriteString(degradedNotice(profile.Degraded))
	output.WriteString("=== CANDIDATE PROFILE ===\n\n")
	output.WriteString(fmt.Sprintf("Name: %s\n", profile.Name))
	output.WriteString(fmt.Sprintf("Contact: %s\n", profile.Contact))
	output.WriteString(fmt.Sprintf("Education: %s\n", profile.Education))
	output.WriteString(fmt.Sprintf("Experience: %s (%d years)\n", profile.Experience, profile.YearsOfExperience))
	output.WriteString("\nSkills:\n")
	for _, skill := range profile.Skills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	if profile.Provider != "" {
		output.WriteString(fmt.Sprintf("\nProvider: %s\n", profile.Provider))
	}

	return output.String(), nil
}

func (ptf *ProfileTextFormatter) SupportedType() string {
	return "ResumeProfile"
}

// ProfileMarkdownFormatter handles markdown formatting for parsed profiles
type ProfileMarkdownFormatter struct{}

func (pmf *ProfileMarkdownFormatter) Format(data any) (string, error) {
	profile, ok := data.(types.ResumeProfile)
	if !ok {
		return "", fmt.Errorf("expected ResumeProfile, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Candidate Profile: %s\n\n", profile.Name))
	if profile.Degraded {
		output.WriteString("> Produced from static demo data, AI providers were unavailable.\n\n")
	}
	output.WriteString(fmt.Sprintf("**Contact:** %s\n\n", profile.Contact))
	output.WriteString(fmt.Sprintf("**Education:** %s\n\n", profile.Education))
	output.WriteString(fmt.Sprintf("**Experience:** %s (%d years)\n\n", profile.Experience, profile.YearsOfExperience))
	output.WriteString("## Skills\n\n")
	for _, skill := range profile.Skills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}

	return output.String(), nil
}

func (pmf *ProfileMarkdownFormatter) SupportedType() string {
	return "ResumeProfile"
}

// MatchTextFormatter handles text formatting for job match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	match, ok := data.(types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected JobMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString(degradedNotice(match.Degraded))
	output.WriteString("=== JOB MATCH ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %d/100 (Grade %s)\n\n", match.MatchScore, match.Grade))
	if len(match.MatchedSkills) > 0 {
		output.WriteString("Matched Skills:\n")
		for _, skill := range match.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(match.MissingSkills) > 0 {
		output.WriteString("Missing Skills:\n")
		for _, skill := range match.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	output.WriteString("Summary:\n")
	output.WriteString(match.Summary)
	output.WriteString("\n")

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "JobMatch"
}

// MatchMarkdownFormatter handles markdown formatting for job match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	match, ok := data.(types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected JobMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Match\n\n")
	if match.Degraded {
		output.WriteString("> Produced from static demo data, AI providers were unavailable.\n\n")
	}
	output.WriteString(fmt.Sprintf("**Score:** %d/100 (Grade %s)\n\n", match.MatchScore, match.Grade))
	if len(match.MatchedSkills) > 0 {
		output.WriteString("## Matched Skills\n\n")
		for _, skill := range match.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(match.MissingSkills) > 0 {
		output.WriteString("## Missing Skills\n\n")
		for _, skill := range match.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	output.WriteString("## Summary\n\n")
	output.WriteString(match.Summary)
	output.WriteString("\n")

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "JobMatch"
}

// RecommendationsTextFormatter handles text formatting for skill recommendations
type RecommendationsTextFormatter struct{}

func (rtf *RecommendationsTextFormatter) Format(data any) (string, error) {
	recs, ok := data.(types.SkillRecommendations)
	if !ok {
		return "", fmt.Errorf("expected SkillRecommendations, got %T", data)
	}

	var output strings.Builder

	output.WriteString(degradedNotice(recs.Degraded))
	output.WriteString("=== SKILL RECOMMENDATIONS ===\n\n")
	output.WriteString("Recommended Skills:\n")
	for _, skill := range recs.RecommendedSkills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	output.WriteString("\n")

	if len(recs.LearningPaths) > 0 {
		output.WriteString("=== LEARNING PATHS ===\n\n")
		for i, path := range recs.LearningPaths {
			output.WriteString(fmt.Sprintf("%d. %s (%s", i+1, path.Skill, path.Level))
			if path.Duration != "" {
				output.WriteString(fmt.Sprintf(", %s", path.Duration))
			}
			output.WriteString(")\n")
			for _, resource := range path.Resources {
				output.WriteString(fmt.Sprintf("   - %s\n", resource))
			}
			output.WriteString("\n")
		}
	}

	if recs.Summary != "" {
		output.WriteString("Summary:\n")
		output.WriteString(recs.Summary)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *RecommendationsTextFormatter) SupportedType() string {
	return "SkillRecommendations"
}

// RecommendationsMarkdownFormatter handles markdown formatting for skill recommendations
type RecommendationsMarkdownFormatter struct{}

func (rmf *RecommendationsMarkdownFormatter) Format(data any) (string, error) {
	recs, ok := data.(types.SkillRecommendations)
	if !ok {
		return "", fmt.Errorf("expected SkillRecommendations, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Skill Recommendations\n\n")
	if recs.Degraded {
		output.WriteString("> Produced from static demo data, AI providers were unavailable.\n\n")
	}
	output.WriteString("## Recommended Skills\n\n")
	for _, skill := range recs.RecommendedSkills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	output.WriteString("\n")

	if len(recs.LearningPaths) > 0 {
		output.WriteString("## Learning Paths\n\n")
		for _, path := range recs.LearningPaths {
			output.WriteString(fmt.Sprintf("### %s (%s)\n\n", path.Skill, path.Level))
			if path.Duration != "" {
				output.WriteString(fmt.Sprintf("**Duration:** %s\n\n", path.Duration))
			}
			for _, resource := range path.Resources {
				output.WriteString(fmt.Sprintf("- %s\n", resource))
			}
			output.WriteString("\n")
		}
	}

	if recs.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(recs.Summary)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *RecommendationsMarkdownFormatter) SupportedType() string {
	return "SkillRecommendations"
}

// ReportTextFormatter handles text formatting for full analysis reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString(degradedNotice(report.Degraded))

	profileText, err := (&ProfileTextFormatter{}).Format(report.Profile)
	if err != nil {
		return "", err
	}
	output.WriteString(profileText)
	output.WriteString("\n")

	if report.Match != nil {
		matchText, err := (&MatchTextFormatter{}).Format(*report.Match)
		if err != nil {
			return "", err
		}
		output.WriteString(matchText)
		output.WriteString("\n")
	}

	recsText, err := (&RecommendationsTextFormatter{}).Format(report.Recommendations)
	if err != nil {
		return "", err
	}
	output.WriteString(recsText)

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// ReportMarkdownFormatter handles markdown formatting for full analysis reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis Report\n\n")
	if report.Degraded {
		output.WriteString("> Produced from static demo data, AI providers were unavailable.\n\n")
	}

	profileText, err := (&ProfileMarkdownFormatter{}).Format(report.Profile)
	if err != nil {
		return "", err
	}
	output.WriteString(profileText)
	output.WriteString("\n")

	if report.Match != nil {
		matchText, err := (&MatchMarkdownFormatter{}).Format(*report.Match)
		if err != nil {
			return "", err
		}
		output.WriteString(matchText)
		output.WriteString("\n")
	}

	recsText, err := (&RecommendationsMarkdownFormatter{}).Format(report.Recommendations)
	if err != nil {
		return "", err
	}
	output.WriteString(recsText)

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
