// Package statestore implements atomic JSON persistence shared by the
// checker state and prediction stores (spec.md §4.F): schema-tolerant load
// merged over defaults, and atomic save via a PID-stamped temp file plus
// rename-over-target so concurrent readers (the external dashboard) never
// observe a partial write.
//
// Grounded on the file-based state pattern in
// lucabodd-solar-forecast/internal/adapters/filestate.go (read-json,
// write-json, log on failure), generalized to the atomic rename + pre-write
// sanity re-parse spec.md requires, since that teacher writes its state file
// directly and has no single-writer lock to protect against a torn write.
package statestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spacewatch/checker/internal/model"
)

// LoadJSON reads and parses the file at path into a copy of fallback,
// relying on json.Unmarshal's behavior of only overwriting fields present in
// the document — any field the file omits keeps fallback's value. A missing
// file returns fallback unchanged (first run); a parse failure logs and
// returns fallback unchanged too, discarding whatever partial decode
// occurred.
func LoadJSON[T any](path string, fallback T) T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("statestore: read failed, using defaults", "path", path, "err", err)
		}
		return fallback
	}

	// Decode once into a zero value first: fallback's maps are shared with
	// result, so a decode that fails partway would otherwise leave entries
	// in them.
	var probe T
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Warn("statestore: parse failed, using defaults", "path", path, "err", err)
		return fallback
	}

	result := fallback
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("statestore: parse failed, using defaults", "path", path, "err", err)
		return fallback
	}
	return result
}

// SaveJSON serializes v, re-parses the serialized bytes as a pre-write
// sanity check, then writes to a sibling temp file named with this
// process's pid and renames it over path. The temp file is removed on any
// failure after it was written.
func SaveJSON[T any](path string, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("statestore: marshal: %w", err)
	}

	var sanity T
	if err := json.Unmarshal(data, &sanity); err != nil {
		return fmt.Errorf("statestore: pre-write sanity check failed: %w", err)
	}

	tmpPath := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%d.tmp", filepath.Base(path), os.Getpid()))
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("statestore: write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			slog.Warn("statestore: failed to clean up temp file after rename failure", "path", tmpPath, "err", rmErr)
		}
		return fmt.Errorf("statestore: rename: %w", err)
	}

	return nil
}

// Load reads and parses the checker state file at path, merging it over
// DefaultCheckerState (spec.md §4.F).
func Load(path string) model.CheckerState {
	return LoadJSON(path, model.DefaultCheckerState())
}

// Save caps alertsSent to maxAlertHistory then atomically persists state.
func Save(path string, state model.CheckerState, maxAlertHistory int) error {
	if maxAlertHistory > 0 && len(state.AlertsSent) > maxAlertHistory {
		state.AlertsSent = state.AlertsSent[len(state.AlertsSent)-maxAlertHistory:]
	}
	return SaveJSON(path, state)
}
