// Package evaluate implements the alert evaluation engine (spec.md §4.C):
// the most intricate component of the checker pipeline. Evaluate consumes a
// Snapshot, the current active-region list, and the previous CheckerState,
// and emits an unordered set of candidate Alerts — threshold crossings,
// novelty detection against remembered event ids, forecast-revision
// detection, and falling-edge "all-clear" recovery detection. It is pure:
// no I/O, no clock access beyond the now parameter, no mutation of its
// inputs.
//
// Grounded on the teacher's server/internal/alerts/engine.go (an Engine
// evaluating named conditions against a snapshot) and condition.go (the
// numeric comparison helpers) — generalized from a single generic
// comparison-expression evaluator into the fixed, spec-defined rule set
// below, since this domain's rules are richer than "field op value".
package evaluate

import (
	"fmt"
	"time"

	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/model"
)

// Evaluate runs every rule in fixed order (spec.md §4.C) and returns every
// candidate alert produced. Cooldown and quiet-hours filtering happen later,
// uniformly, in internal/cooldown — this function never drops a rule match.
func Evaluate(snap model.Snapshot, regions []model.ActiveRegion, prev model.CheckerState, cfg *config.Config, now time.Time) []model.Alert {
	var alerts []model.Alert

	alerts = append(alerts, evalCMEs(snap, prev, cfg, now)...)
	alerts = append(alerts, evalFlares(snap, prev, now)...)
	alerts = append(alerts, evalHSS(snap, prev, now)...)
	if a := evalKp(snap, prev, cfg, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := evalBz(snap, prev, cfg, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := evalWindSpeed(snap, prev, cfg, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := evalWindDensity(snap, prev, cfg, now); a != nil {
		alerts = append(alerts, *a)
	}
	alerts = append(alerts, evalActiveRegions(regions, prev, cfg, now)...)
	alerts = append(alerts, evalAllClear(snap, prev, cfg, now)...)

	return alerts
}

// 1. Earth-directed CMEs: novelty + forecast-revision detection.
func evalCMEs(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) []model.Alert {
	var alerts []model.Alert

	for _, c := range snap.EarthDirectedCMEs {
		known, seen := prev.KnownCMEs[c.ID]
		if !seen {
			urgency := model.UrgencyHigh
			if c.PredictedKp >= 7 {
				urgency = model.UrgencyCritical
			}
			alerts = append(alerts, model.Alert{
				ID:            "cme-earth-" + c.ID,
				Type:          model.TypeCMEEarth,
				Urgency:       urgency,
				Title:         "Earth-Directed CME Detected",
				Body:          cmeBody(c, now),
				Timestamp:     now,
				SourceEventID: c.ID,
			})
			continue
		}

		jump := cfg.Thresholds.CMERevision.KpJump
		if jump <= 0 {
			jump = 2
		}
		if c.PredictedKp-known.PredictedKp >= jump && c.PredictedKp >= 5 {
			urgency := model.UrgencyHigh
			if c.PredictedKp >= 7 {
				urgency = model.UrgencyCritical
			}
			alerts = append(alerts, model.Alert{
				ID:            fmt.Sprintf("cme-revision-%s-%d", c.ID, now.UnixNano()),
				Type:          model.TypeCMERevision,
				Urgency:       urgency,
				Title:         fmt.Sprintf("CME Forecast Revised — Kp Now %.1f", c.PredictedKp),
				Body:          cmeBody(c, now),
				Timestamp:     now,
				SourceEventID: c.ID,
			})
		}
	}

	return alerts
}

func cmeBody(c model.CME, now time.Time) string {
	eta := formatETA(c.PredictedArrival, now)
	body := fmt.Sprintf("Speed %.0f km/s, predicted Kp %.1f, ETA %s.", c.Speed, c.PredictedKp, eta)
	if s := kpImpactSentence(c.PredictedKp); s != "" {
		body += " " + s
	}
	return body
}

// 2. Flares: novelty detection, X and M class only.
func evalFlares(snap model.Snapshot, prev model.CheckerState, now time.Time) []model.Alert {
	var alerts []model.Alert

	for _, f := range snap.RecentFlares {
		if prev.KnownFlareIDs[f.ID] {
			continue
		}
		letter := f.Letter()
		var typ string
		var urgency model.Urgency
		switch letter {
		case "X":
			typ, urgency = model.TypeFlareX, model.UrgencyCritical
		case "M":
			typ, urgency = model.TypeFlareM, model.UrgencyHigh
		default:
			continue
		}

		body := fmt.Sprintf("A %s flare occurred at %s.", f.ClassType, f.BeginTime.Format(time.RFC3339))
		if s := flareImpactSentence(letter); s != "" {
			body += " " + s
		}

		alerts = append(alerts, model.Alert{
			ID:            typ + "-" + f.ID,
			Type:          typ,
			Urgency:       urgency,
			Title:         fmt.Sprintf("%s-Class Flare: %s", letter, f.ClassType),
			Body:          body,
			Timestamp:     now,
			SourceEventID: f.ID,
		})
	}

	return alerts
}

// 3. HSS arrivals: novelty detection.
func evalHSS(snap model.Snapshot, prev model.CheckerState, now time.Time) []model.Alert {
	var alerts []model.Alert

	for _, h := range snap.HSS {
		if prev.KnownHSSIDs[h.ID] {
			continue
		}
		alerts = append(alerts, model.Alert{
			ID:            "hss-arrival-" + h.ID,
			Type:          model.TypeHSSArrival,
			Urgency:       model.UrgencyModerate,
			Title:         "High-Speed Solar Wind Stream Arrival",
			Body:          "A high-speed stream from a coronal hole has arrived, which may enhance geomagnetic activity over the next day.",
			Timestamp:     now,
			SourceEventID: h.ID,
		})
	}

	return alerts
}

// 4. Kp crossings: only the highest matching branch fires.
func evalKp(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) *model.Alert {
	kp := snap.Kp
	prevKp := prev.LastKp
	th := cfg.Thresholds.Kp

	switch {
	case kp >= th.Major && prevKp < th.Major:
		return kpAlert(kp, model.UrgencyCritical, now)
	case kp >= th.Storm && prevKp < th.Storm:
		return kpAlert(kp, model.UrgencyHigh, now)
	case kp >= th.Elevated && prevKp < th.Elevated:
		return &model.Alert{
			ID:        fmt.Sprintf("kp-elevated-%d", now.UnixNano()),
			Type:      model.TypeKpElevated,
			Urgency:   model.UrgencyInfo,
			Title:     fmt.Sprintf("Kp %.1f — Elevated Geomagnetic Activity", kp),
			Body:      kpImpactSentence(kp),
			Timestamp: now,
		}
	default:
		return nil
	}
}

func kpAlert(kp float64, urgency model.Urgency, now time.Time) *model.Alert {
	return &model.Alert{
		ID:        fmt.Sprintf("kp-threshold-%d", now.UnixNano()),
		Type:      model.TypeKpThreshold,
		Urgency:   urgency,
		Title:     fmt.Sprintf("Kp %.1f — %s Storm Threshold", kp, gScaleForKp(kp)),
		Body:      kpImpactSentence(kp),
		Timestamp: now,
	}
}

// gScaleForKp uses internal/assemble's Kp thresholds, except that it returns
// "G0" below Kp 5 where assemble leaves the scale empty; duplicated here
// (rather than imported) to keep evaluate's only dependency on assemble's
// domain knowledge, not its package, since the rule is a one-line fact about
// the G-scale, not a snapshot-assembly concern.
func gScaleForKp(kp float64) string {
	switch {
	case kp >= 9:
		return "G5"
	case kp >= 8:
		return "G4"
	case kp >= 7:
		return "G3"
	case kp >= 6:
		return "G2"
	case kp >= 5:
		return "G1"
	default:
		return "G0"
	}
}

// 5. Bz crossings: missing magneticField treats bz as 0 (spec.md §4.C edge
// cases), which cannot cross either negative threshold.
func evalBz(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) *model.Alert {
	var bz float64
	if snap.MagneticField != nil {
		bz = snap.MagneticField.Bz
	}
	prevBz := prev.LastBz
	th := cfg.Thresholds.Bz

	switch {
	case bz <= th.Strong && prevBz > th.Strong:
		return bzAlert(bz, model.UrgencyHigh, now)
	case bz <= th.Moderate && prevBz > th.Moderate:
		return bzAlert(bz, model.UrgencyModerate, now)
	default:
		return nil
	}
}

func bzAlert(bz float64, urgency model.Urgency, now time.Time) *model.Alert {
	return &model.Alert{
		ID:        fmt.Sprintf("bz-threshold-%d", now.UnixNano()),
		Type:      model.TypeBzThreshold,
		Urgency:   urgency,
		Title:     fmt.Sprintf("Bz %.1f nT — Southward IMF", bz),
		Body:      bzImpactSentence(bz),
		Timestamp: now,
	}
}

// 6. Solar wind speed crossings: missing solarWind treats speed as 0.
func evalWindSpeed(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) *model.Alert {
	var speed float64
	if snap.SolarWind != nil {
		speed = snap.SolarWind.Speed
	}
	prevSpeed := prev.LastWindSpeed
	th := cfg.Thresholds.WindSpeed

	switch {
	case speed >= th.High && prevSpeed < th.High:
		return windAlert(speed, model.UrgencyHigh, now)
	case speed >= th.Elevated && prevSpeed < th.Elevated:
		return windAlert(speed, model.UrgencyModerate, now)
	default:
		return nil
	}
}

func windAlert(speed float64, urgency model.Urgency, now time.Time) *model.Alert {
	return &model.Alert{
		ID:        fmt.Sprintf("wind-speed-%d", now.UnixNano()),
		Type:      model.TypeWindSpeed,
		Urgency:   urgency,
		Title:     fmt.Sprintf("Solar Wind Speed %.0f km/s", speed),
		Body:      windImpactSentence(speed),
		Timestamp: now,
	}
}

// 7. Solar wind density spike: missing solarWind treats density as 0.
func evalWindDensity(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) *model.Alert {
	var density float64
	if snap.SolarWind != nil {
		density = snap.SolarWind.Density
	}
	prevDensity := prev.LastWindDensity
	th := cfg.Thresholds.Density.High

	if density >= th && prevDensity < th {
		return &model.Alert{
			ID:        fmt.Sprintf("wind-density-%d", now.UnixNano()),
			Type:      model.TypeWindDensity,
			Urgency:   model.UrgencyModerate,
			Title:     fmt.Sprintf("Solar Wind Density Spike: %.1f p/cm³", density),
			Body:      "Elevated solar wind density can compress the magnetosphere and enhance geomagnetic coupling.",
			Timestamp: now,
		}
	}
	return nil
}

// 8. Active regions: novelty detection gated by flare probability thresholds.
func evalActiveRegions(regions []model.ActiveRegion, prev model.CheckerState, cfg *config.Config, now time.Time) []model.Alert {
	if !cfg.ActiveRegion.Enabled {
		return nil
	}

	var alerts []model.Alert
	for _, r := range regions {
		key := fmt.Sprintf("%d", r.RegionNumber)
		if prev.KnownRegionNumbers[key] {
			continue
		}
		if r.FlareProbM < cfg.ActiveRegion.MFlareProb && r.FlareProbX < cfg.ActiveRegion.XFlareProb {
			continue
		}
		alerts = append(alerts, model.Alert{
			ID:      "active-region-" + key,
			Type:    model.TypeActiveRegion,
			Urgency: model.UrgencyInfo,
			Title:   fmt.Sprintf("New Active Region %d — Flare Watch", r.RegionNumber),
			Body: fmt.Sprintf("Region %d at %s (%s): M-class probability %.0f%%, X-class probability %.0f%%.",
				r.RegionNumber, r.Location, r.MagneticClass, r.FlareProbM, r.FlareProbX),
			Timestamp:     now,
			SourceEventID: key,
		})
	}
	return alerts
}

// 9. All-clear: falling-edge recovery detection. Per spec.md §9's recorded
// open-question decision, there is exactly one all-clear per recovering
// condition regardless of how high the condition peaked — no separate
// major-storm all-clear distinct from the G1 recovery.
func evalAllClear(snap model.Snapshot, prev model.CheckerState, cfg *config.Config, now time.Time) []model.Alert {
	var alerts []model.Alert

	if prev.KpWasAbove5 && snap.Kp < cfg.Thresholds.Kp.Storm {
		alerts = append(alerts, allClearAlert("Kp", "Geomagnetic activity has recovered below storm threshold.", now))
	}

	var bz float64
	if snap.MagneticField != nil {
		bz = snap.MagneticField.Bz
	}
	if prev.BzWasBelow15 && bz > cfg.Thresholds.Bz.Moderate {
		alerts = append(alerts, allClearAlert("Bz", "The interplanetary magnetic field has turned away from strongly southward.", now))
	}

	var speed float64
	if snap.SolarWind != nil {
		speed = snap.SolarWind.Speed
	}
	if prev.WindWasAbove700 && speed < cfg.Thresholds.WindSpeed.Elevated {
		alerts = append(alerts, allClearAlert("Wind", "Solar wind speed has receded below elevated levels.", now))
	}

	return alerts
}

func allClearAlert(condition, body string, now time.Time) model.Alert {
	return model.Alert{
		ID:        fmt.Sprintf("all-clear-%s-%d", condition, now.UnixNano()),
		Type:      model.TypeAllClear,
		Urgency:   model.UrgencyModerate,
		Title:     fmt.Sprintf("All-Clear: %s Recovered", condition),
		Body:      body,
		Timestamp: now,
	}
}
