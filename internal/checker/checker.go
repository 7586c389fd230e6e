// Package checker is the orchestration component (spec.md §4.I): on each
// invocation it truncates oversized logs, acquires the single-writer lock,
// loads state, runs the fetch -> assemble -> evaluate -> cooldown -> dispatch
// pipeline, persists the updated state, verifies due predictions, and
// releases the lock. A pipeline failure still updates and persists
// lastRunAt, per spec.md's "any uncaught failure during the pipeline still
// updates K.lastRunAt and persists" requirement.
package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacewatch/checker/internal/assemble"
	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/cooldown"
	"github.com/spacewatch/checker/internal/dispatch"
	"github.com/spacewatch/checker/internal/evaluate"
	"github.com/spacewatch/checker/internal/fetch"
	"github.com/spacewatch/checker/internal/lock"
	"github.com/spacewatch/checker/internal/logtruncate"
	"github.com/spacewatch/checker/internal/metrics"
	"github.com/spacewatch/checker/internal/model"
	"github.com/spacewatch/checker/internal/prediction"
	"github.com/spacewatch/checker/internal/statestore"
)

// Run executes exactly one tick. now is the tick's logical timestamp —
// callers pass time.Now() in production and a fixed value in tests.
func Run(ctx context.Context, cfg *config.Config, now time.Time) error {
	if err := logtruncate.TruncateIfOversized(cfg.Paths.LogFile, cfg.MaxLogSize, now); err != nil {
		slog.Error("checker: log truncation failed, continuing anyway", "err", err)
	}

	lockRes, err := lock.Acquire(cfg.Paths.LockFile, cfg.LockTimeout, now)
	if err != nil {
		return err
	}
	if !lockRes.Acquired {
		slog.Info("checker: lock held by a live process, skipping this tick", "reason", lockRes.Reason)
		metrics.LockRefusalsTotal.Inc()
		return nil
	}
	if lockRes.Stolen {
		slog.Warn("checker: stole a stale or orphaned lock", "reason", lockRes.Reason)
		metrics.LockStealsTotal.WithLabelValues(lockRes.Reason).Inc()
	}
	defer func() {
		if err := lock.Release(cfg.Paths.LockFile); err != nil {
			slog.Error("checker: lock release failed", "err", err)
		}
	}()

	state := statestore.Load(cfg.Paths.StateFile)
	nextState, snap := runPipeline(ctx, cfg, fetch.NewRegistry(), state, now)

	if err := statestore.Save(cfg.Paths.StateFile, nextState, cfg.MaxAlertHistory); err != nil {
		slog.Error("checker: state save failed, keeping prior file intact", "err", err)
	}

	runVerification(cfg, nextState, snap, now)

	return nil
}

// runPipeline executes fetch -> assemble -> evaluate -> cooldown -> dispatch
// and returns the next CheckerState. It never returns an error: every stage
// degrades gracefully per spec.md §7, and lastRunAt/dataHealth are always
// advanced even when every fetcher fails.
func runPipeline(ctx context.Context, cfg *config.Config, registry *fetch.Registry, state model.CheckerState, now time.Time) (model.CheckerState, model.Snapshot) {
	tickStart := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(tickStart).Seconds()) }()

	results := registry.FetchAll(ctx)
	fetchedAt := time.Now()

	health := fetch.BuildHealth(state.DataHealth, results, now)
	for source, h := range health {
		if !h.OK {
			metrics.FetchFailuresTotal.WithLabelValues(source).Inc()
		}
	}

	snap := assemble.Build(results, state, now, fetchedAt)

	var regions []model.ActiveRegion
	if results.Regions.Err == nil {
		regions = results.Regions.Value.Regions
	}

	candidates := evaluate.Evaluate(snap, regions, state, cfg, now)

	quietActive := cfg.QuietHours.In(now.Hour())
	allowed := cooldown.Filter(candidates, state.LastCooldowns, cfg.Cooldowns, quietActive, now)
	for _, c := range candidates {
		if !containsAlert(allowed, c) {
			metrics.AlertsSuppressedTotal.WithLabelValues(c.Type).Inc()
		}
	}

	nextCooldowns := cooldown.AdvanceCooldowns(state.LastCooldowns, allowed, now)

	channels := dispatch.BuildChannels(cfg)
	dispatched := dispatch.Dispatch(ctx, allowed, cfg, channels)
	slog.Info("checker: tick dispatched", "candidates", len(candidates), "allowed", len(allowed), "sent", len(dispatched))
	for _, a := range allowed {
		metrics.AlertsDispatchedTotal.WithLabelValues(a.Type, string(a.Urgency)).Inc()
	}

	return advanceState(state, snap, regions, health, allowed, nextCooldowns, cfg, now), snap
}

func containsAlert(alerts []model.Alert, target model.Alert) bool {
	for _, a := range alerts {
		if a.ID == target.ID {
			return true
		}
	}
	return false
}

// runVerification loads the prediction store, resolves any predictions
// whose window has closed, dispatches the result notifications, and saves.
// Its failures are isolated (spec.md §4.H/§7): they are logged but never
// propagate back into the checker state that was already saved.
func runVerification(cfg *config.Config, state model.CheckerState, snap model.Snapshot, now time.Time) {
	predState := statestore.LoadJSON(cfg.Paths.PredictionFile, model.DefaultPredictionState())

	newState, results := prediction.Verify(predState, state.AlertsSent, snap, now)

	if len(results) == 0 {
		return
	}

	channels := dispatch.BuildChannels(cfg)
	for _, r := range results {
		metrics.PredictionsVerifiedTotal.WithLabelValues(string(r.Prediction.Status)).Inc()
		if ch, ok := channels["desktop"]; ok {
			if err := ch.Send(context.Background(), r.Alert); err != nil {
				slog.Error("checker: failed to deliver prediction result notification", "err", err)
			}
		}
	}

	if err := statestore.SaveJSON(cfg.Paths.PredictionFile, newState); err != nil {
		slog.Error("checker: prediction state save failed", "err", err)
	}
}
