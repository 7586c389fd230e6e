// Package predictinbox watches an optional directory for externally
// dropped *.json prediction files and feeds them through
// prediction.Submit, supplementing the "predictions POST" interface
// spec.md keeps out of the HTTP layer without standing up an HTTP server
// (SPEC_FULL.md §3/§4).
//
// Grounded directly on agent/internal/config/watch.go's fsnotify loop:
// watch for Write/Create events, re-add the watch after an atomic-save
// rename replaces the inode, log and skip on a bad payload rather than
// crash the watcher.
package predictinbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Submission is the JSON shape an external writer drops into the inbox
// directory: {"note": "..."}.
type Submission struct {
	Note string `json:"note"`
}

// Submitter is the subset of prediction store behavior the watcher needs;
// cmd/spacewatch-checker wires this to a function that loads the prediction
// file, submits, and saves it again on every call.
type Submitter func(note string, now time.Time) error

// Watch monitors dir for *.json files and calls submit for each one,
// removing the file after a successful submit so it is not reprocessed.
// It runs until ctx is cancelled.
func Watch(ctx context.Context, dir string, submit Submitter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("predictinbox: watching for dropped prediction files", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			processFile(event.Name, submit)

			_ = watcher.Add(dir)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("predictinbox: watcher error", "err", err)
		}
	}
}

func processFile(path string, submit Submitter) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("predictinbox: read failed, skipping", "path", path, "err", err)
		return
	}

	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		slog.Error("predictinbox: invalid submission, skipping", "path", path, "err", err)
		return
	}

	if err := submit(sub.Note, time.Now()); err != nil {
		slog.Warn("predictinbox: submit refused", "path", path, "err", err)
		return
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("predictinbox: failed to remove processed file", "path", path, "err", err)
	}
}
