// Command spacewatch-baserate is the offline one-shot base-rate sampler
// spec.md §4.H describes in prose: read a history of significant events,
// sample a configurable number of random verification-length windows, and
// persist the resulting empirical probability into the prediction store's
// config.baseRate.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spacewatch/checker/internal/baserate"
	"github.com/spacewatch/checker/internal/model"
	"github.com/spacewatch/checker/internal/statestore"
)

// sidecar is the diffable YAML artifact written alongside predictions.json
// so a reviewer can see a base-rate recomputation in a plain text diff
// without parsing the JSON prediction log.
type sidecar struct {
	BaseRate      float64   `yaml:"baseRate"`
	ComputedAt    time.Time `yaml:"computedAt"`
	SampleWindows int       `yaml:"sampleWindows"`
	WindowHours   float64   `yaml:"windowHours"`
	HistoryEvents int       `yaml:"historyEvents"`
}

func main() {
	historyPath := flag.String("history", "", "path to a JSON array of historical significant events ({type, timestamp})")
	predictionPath := flag.String("predictions", "predictions.json", "path to the prediction store to update")
	windowHours := flag.Float64("window-hours", 48, "verification window length in hours")
	sampleWindows := flag.Int("samples", 10000, "number of random windows to draw")
	seed := flag.Int64("seed", 0, "rng seed; 0 uses the current time")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *historyPath == "" {
		slog.Error("spacewatch-baserate: -history is required")
		os.Exit(1)
	}

	events, err := loadHistory(*historyPath)
	if err != nil {
		slog.Error("spacewatch-baserate: failed to load history", "err", err)
		os.Exit(1)
	}
	slog.Info("spacewatch-baserate: loaded history", "path", *historyPath, "events", len(events))

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))
	now := time.Now()

	result := baserate.Sample(events, *windowHours, *sampleWindows, rng, now)
	slog.Info("spacewatch-baserate: sampled base rate",
		"baseRate", result.BaseRate,
		"windowHours", *windowHours,
		"samples", result.SampleWindows,
	)

	state := statestore.LoadJSON(*predictionPath, model.DefaultPredictionState())
	state.Config.BaseRate = &result.BaseRate
	state.Config.BaseRateComputedAt = &result.ComputedAt
	state.Config.BaseRateSampleWindows = result.SampleWindows

	if err := statestore.SaveJSON(*predictionPath, state); err != nil {
		slog.Error("spacewatch-baserate: failed to persist base rate", "err", err)
		os.Exit(1)
	}

	sidecarPath := sidecarPathFor(*predictionPath)
	if err := writeSidecar(sidecarPath, sidecar{
		BaseRate:      result.BaseRate,
		ComputedAt:    result.ComputedAt,
		SampleWindows: result.SampleWindows,
		WindowHours:   *windowHours,
		HistoryEvents: len(events),
	}); err != nil {
		slog.Error("spacewatch-baserate: failed to write yaml sidecar", "err", err)
		os.Exit(1)
	}

	slog.Info("spacewatch-baserate: base rate persisted", "path", *predictionPath, "sidecar", sidecarPath)
}

func sidecarPathFor(predictionPath string) string {
	trimmed := strings.TrimSuffix(predictionPath, ".json")
	return trimmed + ".baserate.yaml"
}

func writeSidecar(path string, s sidecar) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadHistory(path string) ([]baserate.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var events []baserate.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}
