package fetch

import (
	"context"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// Source names used as dataHealth keys (spec.md §3 CheckerState.dataHealth)
// and in fetch-error log lines.
const (
	SourceKp           = "kp"
	SourceMagRealtime  = "mag-field-realtime"
	SourceMag7Day      = "mag-field-7day"
	SourceWindRealtime = "solar-wind-realtime"
	SourceWind7Day     = "solar-wind-7day"
	SourceXray         = "xray-flux"
	SourceFlares       = "flares"
	SourceCME          = "cme-analysis"
	SourceEvents       = "notifications"
	SourceRegions      = "active-regions"
	SourceAlerts       = "product-alerts"
	SourceForecast     = "forecast-3day"
)

// Results is every fetcher's outcome for one tick, one field per source;
// errs maps the failed ones to their source names for the dataHealth builder.
type Results struct {
	Kp           Outcome[KpResult]
	MagRealtime  Outcome[MagFieldResult]
	Mag7Day      Outcome[MagFieldResult]
	WindRealtime Outcome[SolarWindResult]
	Wind7Day     Outcome[SolarWindResult]
	Xray         Outcome[XrayResult]
	Flares       Outcome[FlaresResult]
	CME          Outcome[CMEResult]
	Events       Outcome[EventsResult]
	Regions      Outcome[RegionsResult]
	Alerts       Outcome[ProductAlertsResult]
	Forecast     Outcome[Forecast3DayResult]
}

// errs returns every (source, error) pair for failed fetchers, used to build
// both log lines and dataHealth updates.
func (res Results) errs() map[string]error {
	out := map[string]error{}
	add := func(name string, err error) {
		if err != nil {
			out[name] = err
		}
	}
	add(SourceKp, res.Kp.Err)
	add(SourceMagRealtime, res.MagRealtime.Err)
	add(SourceMag7Day, res.Mag7Day.Err)
	add(SourceWindRealtime, res.WindRealtime.Err)
	add(SourceWind7Day, res.Wind7Day.Err)
	add(SourceXray, res.Xray.Err)
	add(SourceFlares, res.Flares.Err)
	add(SourceCME, res.CME.Err)
	add(SourceEvents, res.Events.Err)
	add(SourceRegions, res.Regions.Err)
	add(SourceAlerts, res.Alerts.Err)
	add(SourceForecast, res.Forecast.Err)
	return out
}

// sources is the full ordered list of source names, used to guarantee every
// source gets a dataHealth entry even when it has never failed.
var sources = []string{
	SourceKp, SourceMagRealtime, SourceMag7Day, SourceWindRealtime, SourceWind7Day,
	SourceXray, SourceFlares, SourceCME, SourceEvents, SourceRegions, SourceAlerts, SourceForecast,
}

// FetchAll invokes every fetcher concurrently, each within its own timeout,
// and waits for all of them to finish (or time out) before returning. One
// slow or failing source never blocks or fails the others.
func (r *Registry) FetchAll(ctx context.Context) Results {
	var res Results

	type job func()
	jobs := []job{
		func() { res.Kp = r.FetchPlanetaryKIndex(ctx) },
		func() { res.MagRealtime = r.FetchMagFieldRealtime(ctx) },
		func() { res.Mag7Day = r.FetchMagField7Day(ctx) },
		func() { res.WindRealtime = r.FetchSolarWindRealtime(ctx) },
		func() { res.Wind7Day = r.FetchSolarWind7Day(ctx) },
		func() { res.Xray = r.FetchXrayFlux(ctx) },
		func() { res.Flares = r.FetchFlares(ctx) },
		func() { res.CME = r.FetchCMEs(ctx) },
		func() { res.Events = r.FetchNotifications(ctx) },
		func() { res.Regions = r.FetchActiveRegions(ctx) },
		func() { res.Alerts = r.FetchProductAlerts(ctx) },
		func() { res.Forecast = r.FetchForecast3Day(ctx) },
	}

	done := make(chan struct{}, len(jobs))
	for _, j := range jobs {
		j := j
		go func() {
			defer func() { done <- struct{}{} }()
			j()
		}()
	}
	for range jobs {
		<-done
	}
	return res
}

// BuildHealth merges this tick's fetch outcomes into the previous dataHealth
// map: a success sets ok=true and lastSuccess=now; a failure sets ok=false
// and lastError to the error message while leaving the prior lastSuccess
// untouched.
func BuildHealth(prev map[string]model.SourceHealth, res Results, now time.Time) map[string]model.SourceHealth {
	next := make(map[string]model.SourceHealth, len(sources))
	errs := res.errs()

	for _, name := range sources {
		h := prev[name]
		if err, failed := errs[name]; failed {
			h.OK = false
			h.LastError = err.Error()
		} else {
			h.OK = true
			h.LastSuccess = now
		}
		next[name] = h
	}
	return next
}
