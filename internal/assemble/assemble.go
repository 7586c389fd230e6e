// Package assemble builds one Snapshot per tick (spec.md §4.B) out of the raw
// per-source fetch.Results and the previous CheckerState. A source that
// failed this tick contributes its spec-mandated substitute rather than an
// error: scalar readings fall back to the last known value carried in state,
// event lists fall back to empty, and solar wind / magnetic field readings
// fall back from the realtime feed to the 7-day feed before going empty.
//
// This mirrors the teacher's compute.Engine.Process (agent/internal/compute/
// engine.go): a pure function from (fetch outcome, prior state) to a derived
// value, with no network or filesystem access of its own.
package assemble

import (
	"time"

	"github.com/spacewatch/checker/internal/fetch"
	"github.com/spacewatch/checker/internal/model"
)

// Build assembles a Snapshot from this tick's fetch results, substituting
// for any source that failed per spec.md §4.B. now is the tick's logical
// timestamp (Snapshot.Timestamp); fetchedAt marks when fetching completed.
func Build(res fetch.Results, state model.CheckerState, now, fetchedAt time.Time) model.Snapshot {
	snap := model.Snapshot{
		Timestamp: now,
		FetchedAt: fetchedAt,
	}

	if res.Kp.Err == nil {
		snap.Kp = res.Kp.Value.Current
		snap.KpForecast24h = res.Kp.Value.Forecast
	} else {
		snap.Kp = state.LastKp
	}
	snap.GScale = gScaleFor(snap.Kp)

	if res.Xray.Err == nil {
		flux := res.Xray.Value.Flux
		snap.XrayFlux = &flux
		snap.RScale = rScaleFor(flux)
	}

	if res.Flares.Err == nil {
		snap.RecentFlares = res.Flares.Value.Flares
		if n := len(snap.RecentFlares); n > 0 {
			latest := snap.RecentFlares[n-1]
			snap.LatestFlare = &latest
		}
	}

	switch {
	case res.WindRealtime.Err == nil:
		w := res.WindRealtime.Value.Wind
		snap.SolarWind = &w
	case res.Wind7Day.Err == nil:
		w := res.Wind7Day.Value.Wind
		snap.SolarWind = &w
	}

	switch {
	case res.MagRealtime.Err == nil:
		f := res.MagRealtime.Value.Field
		snap.MagneticField = &f
	case res.Mag7Day.Err == nil:
		f := res.Mag7Day.Value.Field
		snap.MagneticField = &f
	}

	if res.CME.Err == nil {
		snap.CMEs = res.CME.Value.All
		snap.EarthDirectedCMEs = res.CME.Value.EarthDirected
	}

	if res.Events.Err == nil {
		snap.RecentStorms = res.Events.Value.Storms
		snap.SEPs = res.Events.Value.SEPs
		snap.HSS = res.Events.Value.HSS
		snap.IPS = res.Events.Value.IPS
		snap.MPC = res.Events.Value.MPC
	}
	snap.SScale = sScaleFor(snap.SEPs)

	if res.Alerts.Err == nil {
		snap.ActiveAlerts = res.Alerts.Value.Products
	}

	if res.Forecast.Err == nil {
		snap.Forecast3Day = res.Forecast.Value.Text
	}

	return snap
}

// gScaleFor derives NOAA's geomagnetic storm scale from the planetary Kp
// index: G1 at Kp 5 up to G5 at Kp 9.
func gScaleFor(kp float64) string {
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
		return ""
	}
}

// rScaleFor derives NOAA's radio blackout scale from the long-band (0.1-0.8nm)
// GOES X-ray flux in W/m^2.
func rScaleFor(flux float64) string {
	switch {
	case flux >= 2e-3:
		return "R5"
	case flux >= 1e-3:
		return "R4"
	case flux >= 1e-4:
		return "R3"
	case flux >= 5e-5:
		return "R2"
	case flux >= 1e-5:
		return "R1"
	default:
		return ""
	}
}

// sScaleFor derives a coarse S-scale presence indicator from observed SEP
// events this tick. NOAA's true S-scale derives from integral proton flux,
// which this daemon does not fetch directly (SPEC_FULL.md §3); a SEP
// notification on the current tick is treated as at-least-S1.
func sScaleFor(seps []model.SEP) string {
	if len(seps) == 0 {
		return ""
	}
	return "S1"
}
