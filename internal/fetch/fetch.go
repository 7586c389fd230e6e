// Package fetch implements the fetcher set (spec.md §4.A): one function per
// upstream NOAA SWPC feed, each returning a typed result or a structured
// fetch error within its own per-call timeout. The set is invoked
// concurrently by Registry.FetchAll; the failure of any one fetcher never
// fails the tick — callers substitute last-known values (internal/assemble)
// and record a dataHealth entry.
//
// This mirrors the teacher's scraper package (agent/internal/scraper): a
// shared HTTP client builder, one small file per upstream kind, and a
// uniform per-source result/error shape — generalized here from Prometheus
// text-format scraping to NOAA SWPC JSON endpoints.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultFetchTimeout = 10 * time.Second

// Outcome is the uniform per-source fetch result: either Value is populated
// and Err is nil, or Value is the zero value and Err describes the failure.
type Outcome[T any] struct {
	Value T
	Err   error
}

// run executes fn within its own timeout derived from ctx, wrapping any
// error with the source name so logs and dataHealth entries are attributable.
func run[T any](ctx context.Context, name string, timeout time.Duration, fn func(context.Context) (T, error)) Outcome[T] {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(cctx)
	if err != nil {
		return Outcome[T]{Err: fmt.Errorf("fetch %s: %w", name, err)}
	}
	return Outcome[T]{Value: v}
}

// getJSON performs an HTTP GET against url and decodes the JSON body into v.
// Any status other than 200 OK is a fetch error; callers get a typed zero value.
func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// defaultClient is shared by every fetcher in this package — the NOAA SWPC
// endpoints are public and need no per-source auth or TLS configuration,
// unlike the teacher's per-source authRoundTripper (there is only one
// upstream authority here, not N independently-secured components).
func defaultClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Endpoints holds the base URLs for every upstream feed, overridable in
// tests and for pointing at a mirror.
type Endpoints struct {
	PlanetaryKIndex string
	MagRealtime     string
	Mag7Day         string
	WindRealtime    string
	Wind7Day        string
	XrayFlux        string
	Flares          string
	CMEAnalysis     string
	Notifications   string
	ActiveRegions   string
	ProductAlerts   string
	Forecast3Day    string
}

// DefaultEndpoints returns the production NOAA SWPC endpoint set.
func DefaultEndpoints() Endpoints {
	const base = "https://services.swpc.noaa.gov"
	return Endpoints{
		PlanetaryKIndex: base + "/products/noaa-planetary-k-index.json",
		MagRealtime:     base + "/products/solar-wind/mag-1-day.json",
		Mag7Day:         base + "/products/solar-wind/mag-7-day.json",
		WindRealtime:    base + "/products/solar-wind/plasma-1-day.json",
		Wind7Day:        base + "/products/solar-wind/plasma-7-day.json",
		XrayFlux:        base + "/json/goes/primary/xrays-6-hour.json",
		Flares:          base + "/json/goes/primary/xray-flares-7-day.json",
		CMEAnalysis:     base + "/products/cme/cme-analysis.json",
		Notifications:   base + "/products/notifications.json",
		ActiveRegions:   base + "/json/solar_regions.json",
		ProductAlerts:   base + "/products/alerts.json",
		Forecast3Day:    base + "/text/3-day-forecast.txt",
	}
}

// Registry holds the configured endpoints, HTTP client, and per-fetcher
// timeout used to invoke every fetcher concurrently in FetchAll.
type Registry struct {
	Endpoints Endpoints
	Client    *http.Client
	Timeout   time.Duration
}

// NewRegistry builds a Registry with production defaults.
func NewRegistry() *Registry {
	return &Registry{
		Endpoints: DefaultEndpoints(),
		Client:    defaultClient(),
		Timeout:   defaultFetchTimeout,
	}
}
