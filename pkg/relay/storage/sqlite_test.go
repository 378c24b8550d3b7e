package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/himanishpuri/EmotionRelay/pkg/models"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test_history.sqlite3")

	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func TestNewDBClientWithPath(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil || client.db == nil {
		t.Fatal("Expected non-nil database handles")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
	if !client.DB.Migrator().HasTable(&Analysis{}) {
		t.Error("Expected analyses table to exist")
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	client, _ := setupTestDB(t)

	in := &models.Analysis{
		ID:              "0b6f7c3e-2f4a-4a59-9d8e-0c1d2e3f4a5b",
		Filename:        "clip.wav",
		Ext:             ".wav",
		SizeBytes:       4096,
		Status:          200,
		TopLabel:        "happy",
		TopScore:        0.87,
		PredictionCount: 7,
		AudioDurationMs: 1500,
		ElapsedMs:       42,
	}
	if err := client.SaveAnalysis(in); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if in.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be filled in")
	}

	got, err := client.GetAnalysis(in.ID)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}

	if got.Filename != "clip.wav" || got.TopLabel != "happy" || got.TopScore != 0.87 {
		t.Errorf("Unexpected record: %+v", got)
	}
	if got.PredictionCount != 7 || got.AudioDurationMs != 1500 || got.SizeBytes != 4096 {
		t.Errorf("Unexpected counters: %+v", got)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	client, _ := setupTestDB(t)

	_, err := client.GetAnalysis("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListAnalysesNewestFirst(t *testing.T) {
	client, _ := setupTestDB(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := &models.Analysis{
			ID:        id,
			Filename:  id + ".wav",
			Status:    200,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := client.SaveAnalysis(rec); err != nil {
			t.Fatalf("SaveAnalysis(%s) failed: %v", id, err)
		}
	}

	all, err := client.ListAnalyses(0)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("Expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	limited, err := client.ListAnalyses(2)
	if err != nil {
		t.Fatalf("ListAnalyses(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 records, got %d", len(limited))
	}

	n, err := client.CountAnalyses()
	if err != nil {
		t.Fatalf("CountAnalyses failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected count 3, got %d", n)
	}
}

func TestNilClient(t *testing.T) {
	var client *DBClient

	if err := client.SaveAnalysis(&models.Analysis{ID: "x"}); err == nil {
		t.Error("Expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should be a no-op, got %v", err)
	}
}
