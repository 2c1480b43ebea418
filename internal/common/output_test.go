package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	if err := ValidateOutputFormat("json", supported); err != nil {
		t.Errorf("json should be valid: %v", err)
	}
	if err := ValidateOutputFormat("yaml", supported); err == nil {
		t.Error("yaml should be rejected")
	}
	if err := ValidateOutputFormat("anything", nil); err != nil {
		t.Errorf("empty restriction list should allow anything: %v", err)
	}
}

func TestHandleOutputWritesFile(t *testing.T) {
	handler := NewOutputHandler(jobsniperErrors.NewLogger(8))
	path := filepath.Join(t.TempDir(), "out", "profile.json")

	profile := types.ResumeProfile{Name: "Jane Doe", Skills: types.StringList{"Go"}}
	err := handler.HandleOutput(profile, CommandConfig{
		OutputFile:   path,
		OutputFormat: "json",
	})
	if err != nil {
		t.Fatalf("HandleOutput: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "Jane Doe") {
		t.Errorf("output missing profile data: %s", data)
	}
}

func TestHandleOutputRejectsUnknownFormat(t *testing.T) {
	handler := NewOutputHandler(jobsniperErrors.NewLogger(8))

	err := handler.HandleOutput(types.ResumeProfile{}, CommandConfig{OutputFormat: "yaml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
