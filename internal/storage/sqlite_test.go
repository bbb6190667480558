package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *DBClient {
	t.Helper()
	client, err := NewDBClientWithPath(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("NewDBClientWithPath: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSaveAndGetRun(t *testing.T) {
	client := newTestClient(t)

	run := &AnalysisRun{
		Source:        "phrase.wav",
		Instrument:    "guitar",
		DetectedNotes: "C4 E4 G4",
		PitchClasses:  "C E G",
		TopScale:      "C Ionian (Major)",
		TopScore:      1.0,
		DurationMs:    2500,
	}

	id, err := client.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned an empty ID")
	}

	got, err := client.GetRunByID(id)
	if err != nil {
		t.Fatalf("GetRunByID: %v", err)
	}
	if got.Source != run.Source || got.TopScale != run.TopScale || got.TopScore != run.TopScore {
		t.Errorf("fetched run %+v does not match saved run", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}
}

func TestSaveRunKeepsExplicitID(t *testing.T) {
	client := newTestClient(t)

	id, err := client.SaveRun(&AnalysisRun{ID: "fixed-id", Source: "a.wav"})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("id = %q, want fixed-id", id)
	}
}

func TestGetRunNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetRunByID("does-not-exist")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	client := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i, source := range []string{"first.wav", "second.wav", "third.wav"} {
		run := &AnalysisRun{Source: source, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := client.SaveRun(run); err != nil {
			t.Fatalf("SaveRun(%s): %v", source, err)
		}
	}

	runs, err := client.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].Source != "third.wav" || runs[2].Source != "first.wav" {
		t.Errorf("runs not newest-first: %s, %s, %s", runs[0].Source, runs[1].Source, runs[2].Source)
	}
}

func TestDeleteRun(t *testing.T) {
	client := newTestClient(t)

	id, err := client.SaveRun(&AnalysisRun{Source: "gone.wav"})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if err := client.DeleteRunByID(id); err != nil {
		t.Fatalf("DeleteRunByID: %v", err)
	}
	if _, err := client.GetRunByID(id); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("run still present after delete: err = %v", err)
	}

	if err := client.DeleteRunByID(id); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestNilClientGuards(t *testing.T) {
	var client *DBClient

	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client: %v", err)
	}
	if _, err := client.SaveRun(&AnalysisRun{}); err == nil {
		t.Error("SaveRun on nil client did not error")
	}
	if _, err := client.ListRuns(); err == nil {
		t.Error("ListRuns on nil client did not error")
	}
	if err := client.DeleteRunByID("x"); err == nil {
		t.Error("DeleteRunByID on nil client did not error")
	}
}
