// Command spacewatch-checker runs exactly one tick of the space-weather
// checker (spec.md §4.I) and exits. It is meant to be invoked by cron or a
// systemd timer, not run as a long-lived daemon — the single-writer lock in
// internal/lock is what makes overlapping invocations (a slow tick still
// running when the next one fires) safe.
//
// The optional metrics exposition endpoint and prediction-inbox watcher,
// when enabled, run as background goroutines; they stop when SIGINT or
// SIGTERM cancels the run's context, or when the process exits after the
// tick.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacewatch/checker/internal/checker"
	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/metrics"
	"github.com/spacewatch/checker/internal/model"
	"github.com/spacewatch/checker/internal/prediction"
	"github.com/spacewatch/checker/internal/predictinbox"
	"github.com/spacewatch/checker/internal/statestore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("spacewatch-checker starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				slog.Error("metrics server stopped", "err", err)
			}
		}()
	}

	if cfg.PredictInbox.Enabled {
		go func() {
			if err := predictinbox.Watch(ctx, cfg.PredictInbox.Dir, submitterFor(cfg)); err != nil {
				slog.Error("predictinbox watcher stopped", "err", err)
			}
		}()
	}

	if err := checker.Run(ctx, cfg, time.Now()); err != nil {
		slog.Error("tick failed", "err", err)
		os.Exit(1)
	}

	slog.Info("spacewatch-checker tick complete")
}

// submitterFor closes a predictinbox.Submitter over cfg's prediction file,
// loading and saving the prediction store around each drop-in submission
// the same way internal/checker's own runVerification does around Verify.
func submitterFor(cfg *config.Config) predictinbox.Submitter {
	return func(note string, now time.Time) error {
		state := statestore.LoadJSON(cfg.Paths.PredictionFile, model.DefaultPredictionState())

		next, _, err := prediction.Submit(state, note, now)
		if err != nil {
			return err
		}

		return statestore.SaveJSON(cfg.Paths.PredictionFile, next)
	}
}
