package fetch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spacewatch/checker/internal/model"
)

// KpResult is the outcome of FetchPlanetaryKIndex: the most recent observed
// Kp value plus the most recent readings (at most 8), oldest first.
type KpResult struct {
	Current  float64
	Forecast []float64
}

// kpRow mirrors one row of NOAA's planetary-k-index.json: a JSON array of
// string-typed columns, the first row being the header.
type kpRow []string

// FetchPlanetaryKIndex retrieves the latest observed Kp and forecast series.
func (r *Registry) FetchPlanetaryKIndex(ctx context.Context) Outcome[KpResult] {
	return run(ctx, "planetary-k-index", r.Timeout, func(ctx context.Context) (KpResult, error) {
		var rows []kpRow
		if err := getJSON(ctx, r.Client, r.Endpoints.PlanetaryKIndex, &rows); err != nil {
			return KpResult{}, err
		}
		if len(rows) < 2 {
			return KpResult{}, fmt.Errorf("planetary-k-index: empty series")
		}

		header := rows[0]
		kpCol := columnIndex(header, "kp_index")
		if kpCol < 0 {
			return KpResult{}, fmt.Errorf("planetary-k-index: missing kp_index column")
		}

		var forecast []float64
		for _, row := range rows[1:] {
			if kpCol >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[kpCol], 64)
			if err != nil {
				continue
			}
			forecast = append(forecast, v)
		}
		if len(forecast) == 0 {
			return KpResult{}, fmt.Errorf("planetary-k-index: no parseable rows")
		}
		if len(forecast) > 8 {
			forecast = forecast[len(forecast)-8:]
		}

		return KpResult{Current: forecast[len(forecast)-1], Forecast: forecast}, nil
	})
}

// magRow mirrors one row of the mag-1-day/mag-7-day products: time_tag,
// bx_gsm, by_gsm, bz_gsm, lon_gsm, lat_gsm, bt.
type magRow []string

// MagFieldResult wraps a single most-recent magnetic field reading.
type MagFieldResult struct {
	Field model.MagneticField
}

// FetchMagFieldRealtime retrieves the latest 1-minute magnetic field reading.
func (r *Registry) FetchMagFieldRealtime(ctx context.Context) Outcome[MagFieldResult] {
	return r.fetchMagField(ctx, "mag-field-realtime", r.Endpoints.MagRealtime)
}

// FetchMagField7Day retrieves the latest reading from the 7-day product,
// used as a fallback when the realtime feed is unavailable (spec.md §4.B).
func (r *Registry) FetchMagField7Day(ctx context.Context) Outcome[MagFieldResult] {
	return r.fetchMagField(ctx, "mag-field-7day", r.Endpoints.Mag7Day)
}

func (r *Registry) fetchMagField(ctx context.Context, name, url string) Outcome[MagFieldResult] {
	return run(ctx, name, r.Timeout, func(ctx context.Context) (MagFieldResult, error) {
		var rows []magRow
		if err := getJSON(ctx, r.Client, url, &rows); err != nil {
			return MagFieldResult{}, err
		}
		if len(rows) < 2 {
			return MagFieldResult{}, fmt.Errorf("%s: empty series", name)
		}

		header := rows[0]
		bxCol := columnIndex(header, "bx_gsm")
		byCol := columnIndex(header, "by_gsm")
		bzCol := columnIndex(header, "bz_gsm")
		btCol := columnIndex(header, "bt")
		if bxCol < 0 || byCol < 0 || bzCol < 0 || btCol < 0 {
			return MagFieldResult{}, fmt.Errorf("%s: missing expected columns", name)
		}

		last := rows[len(rows)-1]
		field := model.MagneticField{
			Bx: parseFloatOr(last, bxCol, 0),
			By: parseFloatOr(last, byCol, 0),
			Bz: parseFloatOr(last, bzCol, 0),
			Bt: parseFloatOr(last, btCol, 0),
		}
		return MagFieldResult{Field: field}, nil
	})
}

func parseFloatOr(row []string, col int, fallback float64) float64 {
	if col < 0 || col >= len(row) {
		return fallback
	}
	v, err := strconv.ParseFloat(row[col], 64)
	if err != nil {
		return fallback
	}
	return v
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
