package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewStore(path, jobsniperErrors.NewLogger(8))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(name string) types.AnalysisReport {
	return types.AnalysisReport{
		Profile: types.ResumeProfile{
			Name:     name,
			Skills:   types.StringList{"Go", "SQL"},
			Provider: "gemini",
		},
		Recommendations: types.SkillRecommendations{
			RecommendedSkills: types.StringList{"Kubernetes"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestStoreSaveAndRecent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, name := range []string{"Jane Doe", "John Smith", "Ada Lovelace"} {
		if _, err := store.Save(ctx, sampleReport(name)); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first
	if entries[0].Report.Profile.Name != "Ada Lovelace" {
		t.Errorf("entries[0] = %q, want Ada Lovelace", entries[0].Report.Profile.Name)
	}
	if entries[1].Report.Profile.Name != "John Smith" {
		t.Errorf("entries[1] = %q, want John Smith", entries[1].Report.Profile.Name)
	}
}

func TestStoreGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, sampleReport("Jane Doe"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil {
		t.Fatal("Get returned nil for existing entry")
	}
	if entry.Report.Profile.Name != "Jane Doe" {
		t.Errorf("Name = %q, want Jane Doe", entry.Report.Profile.Name)
	}

	missing, err := store.Get(ctx, id+100)
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Error("Get returned an entry for a missing ID")
	}
}

func TestStoreCountAndCleanup(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	old := sampleReport("Old Entry")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	if _, err := store.Save(ctx, old); err != nil {
		t.Fatalf("Save old: %v", err)
	}
	if _, err := store.Save(ctx, sampleReport("Fresh Entry")); err != nil {
		t.Fatalf("Save fresh: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}

	if err := store.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count after cleanup: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d after cleanup, want 1", count)
	}
}

func TestStoreEmptyRecent(t *testing.T) {
	store := testStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}
