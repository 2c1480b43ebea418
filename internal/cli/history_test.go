package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/history"
	"jobsniper/internal/types"
)

func TestShowHistoryEntry(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"), jobsniperErrors.NewLogger(8))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	report := types.AnalysisReport{
		Profile:   types.ResumeProfile{Name: "Jane Doe", Provider: "gemini"},
		CreatedAt: time.Now().UTC(),
	}
	id, err := store.Save(context.Background(), report)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := showHistoryEntry(context.Background(), store, id)
	if err != nil {
		t.Fatalf("showHistoryEntry: %v", err)
	}
	if !strings.Contains(out, "Jane Doe") {
		t.Errorf("output = %q, want the stored profile name", out)
	}
	if !strings.Contains(out, "gemini") {
		t.Errorf("output = %q, want the stored provider", out)
	}

	if _, err := showHistoryEntry(context.Background(), store, id+100); err == nil {
		t.Error("showHistoryEntry returned nil error for a missing ID")
	}
}
