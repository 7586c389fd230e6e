package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRegistry(t *testing.T, path string, handler http.HandlerFunc) *Registry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ep := DefaultEndpoints()
	setEndpoint(&ep, path, srv.URL+path)

	return &Registry{Endpoints: ep, Client: srv.Client(), Timeout: 2 * time.Second}
}

// setEndpoint overrides the single field of Endpoints whose default value
// ends in path, letting tests stand up one httptest.Server per fetcher
// without duplicating the whole DefaultEndpoints literal.
func setEndpoint(ep *Endpoints, path, url string) {
	fields := map[string]*string{
		"/products/noaa-planetary-k-index.json": &ep.PlanetaryKIndex,
		"/products/solar-wind/mag-1-day.json":    &ep.MagRealtime,
		"/products/solar-wind/mag-7-day.json":    &ep.Mag7Day,
		"/products/solar-wind/plasma-1-day.json": &ep.WindRealtime,
		"/products/solar-wind/plasma-7-day.json": &ep.Wind7Day,
		"/json/goes/primary/xrays-6-hour.json":   &ep.XrayFlux,
		"/json/goes/primary/xray-flares-7-day.json": &ep.Flares,
		"/products/cme/cme-analysis.json":        &ep.CMEAnalysis,
		"/products/notifications.json":           &ep.Notifications,
		"/json/solar_regions.json":               &ep.ActiveRegions,
		"/products/alerts.json":                  &ep.ProductAlerts,
		"/text/3-day-forecast.txt":                &ep.Forecast3Day,
	}
	if f, ok := fields[path]; ok {
		*f = url
	}
}

func TestFetchPlanetaryKIndex(t *testing.T) {
	body := `[
		["time_tag","kp_index","a_running","station_count"],
		["2026-07-30 21:00:00","3.33","9","11"],
		["2026-07-31 00:00:00","4.67","12","11"]
	]`
	r := testRegistry(t, "/products/noaa-planetary-k-index.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchPlanetaryKIndex(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Value.Current != 4.67 {
		t.Errorf("Current = %v, want 4.67", out.Value.Current)
	}
	if len(out.Value.Forecast) != 2 {
		t.Errorf("len(Forecast) = %d, want 2", len(out.Value.Forecast))
	}
}

func TestFetchPlanetaryKIndex_EmptyBody(t *testing.T) {
	r := testRegistry(t, "/products/noaa-planetary-k-index.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	out := r.FetchPlanetaryKIndex(context.Background())
	if out.Err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestFetchMagFieldRealtime(t *testing.T) {
	body := `[
		["time_tag","bx_gsm","by_gsm","bz_gsm","lon_gsm","lat_gsm","bt"],
		["2026-07-31 00:00:00","1.2","-3.4","-8.9","200.1","10.2","9.5"]
	]`
	r := testRegistry(t, "/products/solar-wind/mag-1-day.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchMagFieldRealtime(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Value.Field.Bz != -8.9 {
		t.Errorf("Bz = %v, want -8.9", out.Value.Field.Bz)
	}
	if out.Value.Field.Bt != 9.5 {
		t.Errorf("Bt = %v, want 9.5", out.Value.Field.Bt)
	}
}

func TestFetchSolarWindRealtime(t *testing.T) {
	body := `[
		["time_tag","density","speed","temperature"],
		["2026-07-31 00:00:00","6.1","410.0","95000"]
	]`
	r := testRegistry(t, "/products/solar-wind/plasma-1-day.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchSolarWindRealtime(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Value.Wind.Speed != 410.0 {
		t.Errorf("Speed = %v, want 410.0", out.Value.Wind.Speed)
	}
	if out.Value.Wind.Density != 6.1 {
		t.Errorf("Density = %v, want 6.1", out.Value.Wind.Density)
	}
}

func TestFetchXrayFlux_PicksLongChannel(t *testing.T) {
	body := `[
		{"time_tag":"2026-07-31T00:00:00Z","flux":1.2e-7,"energy":"0.05-0.4nm"},
		{"time_tag":"2026-07-31T00:00:00Z","flux":3.4e-6,"energy":"0.1-0.8nm"},
		{"time_tag":"2026-07-30T23:58:00Z","flux":2.1e-6,"energy":"0.1-0.8nm"}
	]`
	r := testRegistry(t, "/json/goes/primary/xrays-6-hour.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchXrayFlux(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Value.Flux != 3.4e-6 {
		t.Errorf("Flux = %v, want 3.4e-6", out.Value.Flux)
	}
}

func TestFetchFlares_SortsOldestFirst(t *testing.T) {
	body := `[
		{"flare_id":"f2","begin_time":"2026-07-31T01:00:00Z","max_class":"M2.1"},
		{"flare_id":"f1","begin_time":"2026-07-30T12:00:00Z","max_class":"X1.0"}
	]`
	r := testRegistry(t, "/json/goes/primary/xray-flares-7-day.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchFlares(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if len(out.Value.Flares) != 2 || out.Value.Flares[0].ID != "f1" {
		t.Errorf("flares not sorted oldest-first: %+v", out.Value.Flares)
	}
}

func TestFetchCMEs_SplitsEarthDirected(t *testing.T) {
	body := `[
		{"cme_id":"c1","is_earth_directed":true,"estimated_kp":6.0,"estimated_shock_arrival_time":"2026-08-01T00:00:00Z"},
		{"cme_id":"c2","is_earth_directed":false,"estimated_kp":2.0,"estimated_shock_arrival_time":"2026-08-02T00:00:00Z"}
	]`
	r := testRegistry(t, "/products/cme/cme-analysis.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchCMEs(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if len(out.Value.All) != 2 {
		t.Errorf("len(All) = %d, want 2", len(out.Value.All))
	}
	if len(out.Value.EarthDirected) != 1 || out.Value.EarthDirected[0].ID != "c1" {
		t.Errorf("EarthDirected = %+v, want only c1", out.Value.EarthDirected)
	}
}

func TestFetchNotifications_Classifies(t *testing.T) {
	body := `[
		{"message_id":"n1","message_type":"WATCH: Geomagnetic Storm","issue_datetime":"2026-07-31 00:00:00.000","message":"...Kp=6.00 expected..."},
		{"message_id":"n2","message_type":"ALERT: Proton SEP Event","issue_datetime":"2026-07-31 00:05:00.000","message":"..."},
		{"message_id":"n3","message_type":"SUMMARY: High Speed Stream","issue_datetime":"2026-07-31 00:10:00.000","message":"..."},
		{"message_id":"n4","message_type":"Something Unrelated","issue_datetime":"2026-07-31 00:15:00.000","message":"..."}
	]`
	r := testRegistry(t, "/products/notifications.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	out := r.FetchNotifications(context.Background())
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if len(out.Value.Storms) != 1 || out.Value.Storms[0].KpIndex != 6.0 {
		t.Errorf("Storms = %+v, want one storm with Kp=6.0", out.Value.Storms)
	}
	if len(out.Value.SEPs) != 1 {
		t.Errorf("SEPs = %+v, want 1", out.Value.SEPs)
	}
	if len(out.Value.HSS) != 1 {
		t.Errorf("HSS = %+v, want 1", out.Value.HSS)
	}
}

func TestFetchAll_PartialFailureDoesNotBlockOthers(t *testing.T) {
	ep := DefaultEndpoints()

	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/products/noaa-planetary-k-index.json":
			_, _ = w.Write([]byte(`[["time_tag","kp_index"],["t","4.0"]]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(okSrv.Close)

	ep.PlanetaryKIndex = okSrv.URL + "/products/noaa-planetary-k-index.json"
	ep.MagRealtime = okSrv.URL + "/missing"
	ep.Mag7Day = okSrv.URL + "/missing"
	ep.WindRealtime = okSrv.URL + "/missing"
	ep.Wind7Day = okSrv.URL + "/missing"
	ep.XrayFlux = okSrv.URL + "/missing"
	ep.Flares = okSrv.URL + "/missing"
	ep.CMEAnalysis = okSrv.URL + "/missing"
	ep.Notifications = okSrv.URL + "/missing"
	ep.ActiveRegions = okSrv.URL + "/missing"
	ep.ProductAlerts = okSrv.URL + "/missing"
	ep.Forecast3Day = okSrv.URL + "/missing"

	r := &Registry{Endpoints: ep, Client: okSrv.Client(), Timeout: 2 * time.Second}
	res := r.FetchAll(context.Background())

	if res.Kp.Err != nil {
		t.Fatalf("Kp fetch should have succeeded, got: %v", res.Kp.Err)
	}
	if res.MagRealtime.Err == nil {
		t.Fatal("MagRealtime fetch should have failed against /missing")
	}

	health := BuildHealth(nil, res, time.Now())
	if !health[SourceKp].OK {
		t.Errorf("health[kp].OK = false, want true")
	}
	if health[SourceMagRealtime].OK {
		t.Errorf("health[mag-field-realtime].OK = true, want false")
	}
	if health[SourceMagRealtime].LastError == "" {
		t.Errorf("health[mag-field-realtime].LastError should be set")
	}
}
