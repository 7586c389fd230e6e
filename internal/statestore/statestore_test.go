package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := Load(path)
	if state.SchemaVersion != model.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", state.SchemaVersion, model.SchemaVersion)
	}
	if state.KnownCMEs == nil {
		t.Error("KnownCMEs should be allocated from defaults")
	}
}

func TestLoad_CorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	state := Load(path)
	if state.SchemaVersion != model.SchemaVersion {
		t.Errorf("expected defaults on corrupt file, got %+v", state)
	}
}

func TestLoad_MissingFieldsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	// Only lastKp present — every other field should retain its default.
	if err := os.WriteFile(path, []byte(`{"lastKp": 4.5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	state := Load(path)
	if state.LastKp != 4.5 {
		t.Errorf("LastKp = %v, want 4.5", state.LastKp)
	}
	if state.KnownCMEs == nil {
		t.Error("KnownCMEs should still be allocated (from the fallback default)")
	}
}

func TestSaveThenLoad_RoundTripIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := model.DefaultCheckerState()
	state.LastKp = 6.1
	state.LastRunAt = time.Now().UTC().Truncate(time.Second)
	state.KnownFlareIDs["f1"] = true

	if err := Save(path, state, 100); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := Load(path)
	if reloaded.LastKp != state.LastKp {
		t.Errorf("LastKp = %v, want %v", reloaded.LastKp, state.LastKp)
	}
	if !reloaded.LastRunAt.Equal(state.LastRunAt) {
		t.Errorf("LastRunAt = %v, want %v", reloaded.LastRunAt, state.LastRunAt)
	}
	if !reloaded.KnownFlareIDs["f1"] {
		t.Error("KnownFlareIDs[f1] should round-trip")
	}
}

func TestSave_CapsAlertHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := model.DefaultCheckerState()
	for i := 0; i < 10; i++ {
		state.AlertsSent = append(state.AlertsSent, model.AlertRecord{ID: string(rune('a' + i))})
	}

	if err := Save(path, state, 3); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := Load(path)
	if len(reloaded.AlertsSent) != 3 {
		t.Fatalf("len(AlertsSent) = %d, want 3", len(reloaded.AlertsSent))
	}
	if reloaded.AlertsSent[len(reloaded.AlertsSent)-1].ID != string(rune('a'+9)) {
		t.Errorf("expected the most recent entries to survive capping, got %+v", reloaded.AlertsSent)
	}
}

func TestSave_NoTempFileLeftBehindOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := Save(path, model.DefaultCheckerState(), 100); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Errorf("expected only state.json to remain, got %+v", entries)
	}
}

func TestLoadJSON_GenericRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	type sample struct {
		Count int `json:"count"`
	}
	if err := SaveJSON(path, sample{Count: 7}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	got := LoadJSON(path, sample{Count: -1})
	if got.Count != 7 {
		t.Errorf("Count = %d, want 7", got.Count)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded sample
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("file did not contain valid JSON: %v", err)
	}
}
