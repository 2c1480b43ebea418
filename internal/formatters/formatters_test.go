package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"jobsniper/internal/types"
)

func sampleProfile() types.ResumeProfile {
	return types.ResumeProfile{
		Name:              "Jane Doe",
		Skills:            types.StringList{"Go", "SQL"},
		Education:         "BSc Computer Science",
		Experience:        "Senior",
		Contact:           "jane@example.com",
		YearsOfExperience: 6,
		Provider:          "gemini",
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleProfile(), "json")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded types.ResumeProfile
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Name != "Jane Doe" {
		t.Errorf("Name = %q", decoded.Name)
	}
}

func TestProfileTextFormatter(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleProfile(), "text")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{"Jane Doe", "jane@example.com", "- Go", "- SQL", "6 years"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDegradedNoticeShown(t *testing.T) {
	profile := sampleProfile()
	profile.Degraded = true
	registry := NewFormatterRegistry()

	out, err := registry.Format(profile, "text")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "demo data") {
		t.Errorf("degraded output carries no notice:\n%s", out)
	}

	md, err := registry.Format(profile, "markdown")
	if err != nil {
		t.Fatalf("Format markdown: %v", err)
	}
	if !strings.Contains(md, "demo data") {
		t.Errorf("degraded markdown carries no notice:\n%s", md)
	}
}

func TestReportFormatterIncludesAllSections(t *testing.T) {
	match := types.JobMatch{MatchScore: 82, Grade: "B+", Summary: "Good fit."}
	report := types.AnalysisReport{
		Profile: sampleProfile(),
		Match:   &match,
		Recommendations: types.SkillRecommendations{
			RecommendedSkills: types.StringList{"Kubernetes"},
			Summary:           "Broaden infrastructure skills.",
		},
	}

	registry := NewFormatterRegistry()
	for _, format := range []string{"text", "markdown"} {
		t.Run(format, func(t *testing.T) {
			out, err := registry.Format(report, format)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			for _, want := range []string{"Jane Doe", "82/100", "Kubernetes"} {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestReportFormatterSkipsNilMatch(t *testing.T) {
	report := types.AnalysisReport{
		Profile: sampleProfile(),
		Recommendations: types.SkillRecommendations{
			RecommendedSkills: types.StringList{"Kubernetes"},
		},
	}

	out, err := NewFormatterRegistry().Format(report, "text")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(out, "JOB MATCH") {
		t.Errorf("output has a match section without a match:\n%s", out)
	}
}

func TestUnknownFormatErrors(t *testing.T) {
	_, err := NewFormatterRegistry().Format(sampleProfile(), "yaml")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	formats := NewFormatterRegistry().GetSupportedFormats()

	want := map[string]bool{"json": false, "text": false, "markdown": false}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("format %q not registered", f)
		}
	}
}
