package checker

import (
	"fmt"
	"time"

	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/model"
)

// advanceState computes the next CheckerState at the end of a tick
// (spec.md §4.I's "K update at end of tick"): scalar last-known values and
// falling-edge flags are set from the current snapshot, known-id sets are
// replaced wholesale with the current snapshot's ids, dataHealth is
// replaced with the freshly built set, and alertsSent is extended with the
// alerts actually dispatched this tick (pre-batch, so each retains its
// original type for future prediction-verification matching).
func advanceState(prev model.CheckerState, snap model.Snapshot, regions []model.ActiveRegion, health map[string]model.SourceHealth, dispatched []model.Alert, lastCooldowns map[string]time.Time, cfg *config.Config, now time.Time) model.CheckerState {
	next := prev

	next.LastRunAt = now
	next.LastKp = snap.Kp

	if snap.MagneticField != nil {
		next.LastBz = snap.MagneticField.Bz
	}
	if snap.SolarWind != nil {
		next.LastWindSpeed = snap.SolarWind.Speed
		next.LastWindDensity = snap.SolarWind.Density
	}

	next.KpWasAbove5 = snap.Kp >= cfg.Thresholds.Kp.Storm
	next.KpWasAbove7 = snap.Kp >= cfg.Thresholds.Kp.Major
	if snap.MagneticField != nil {
		next.BzWasBelow10 = snap.MagneticField.Bz <= cfg.Thresholds.Bz.Moderate
		next.BzWasBelow15 = snap.MagneticField.Bz <= cfg.Thresholds.Bz.Strong
	}
	if snap.SolarWind != nil {
		next.WindWasAbove600 = snap.SolarWind.Speed >= cfg.Thresholds.WindSpeed.Elevated
		next.WindWasAbove700 = snap.SolarWind.Speed >= cfg.Thresholds.WindSpeed.High
		next.DensityWasAbove20 = snap.SolarWind.Density >= cfg.Thresholds.Density.High
	}

	next.KnownCMEs = map[string]model.KnownCME{}
	for _, c := range snap.EarthDirectedCMEs {
		next.KnownCMEs[c.ID] = model.KnownCME{PredictedKp: c.PredictedKp, PredictedArrival: c.PredictedArrival}
	}

	next.KnownFlareIDs = map[string]bool{}
	for _, f := range snap.RecentFlares {
		next.KnownFlareIDs[f.ID] = true
	}

	next.KnownHSSIDs = map[string]bool{}
	for _, h := range snap.HSS {
		next.KnownHSSIDs[h.ID] = true
	}

	next.KnownRegionNumbers = map[string]bool{}
	for _, r := range regions {
		next.KnownRegionNumbers[fmt.Sprintf("%d", r.RegionNumber)] = true
	}

	next.KnownAlertProductIDs = map[string]bool{}
	for _, p := range snap.ActiveAlerts {
		next.KnownAlertProductIDs[p.ID] = true
	}

	next.DataHealth = health
	next.LastCooldowns = lastCooldowns

	for _, a := range dispatched {
		next.AlertsSent = append(next.AlertsSent, a.ToRecord())
	}
	if cfg.MaxAlertHistory > 0 && len(next.AlertsSent) > cfg.MaxAlertHistory {
		next.AlertsSent = next.AlertsSent[len(next.AlertsSent)-cfg.MaxAlertHistory:]
	}

	return next
}
