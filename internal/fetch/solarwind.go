package fetch

import (
	"context"
	"fmt"

	"github.com/spacewatch/checker/internal/model"
)

// plasmaRow mirrors one row of the plasma-1-day/plasma-7-day products:
// time_tag, density, speed, temperature.
type plasmaRow []string

// SolarWindResult wraps a single most-recent plasma reading.
type SolarWindResult struct {
	Wind model.SolarWind
}

// FetchSolarWindRealtime retrieves the latest 1-minute solar wind plasma reading.
func (r *Registry) FetchSolarWindRealtime(ctx context.Context) Outcome[SolarWindResult] {
	return r.fetchSolarWind(ctx, "solar-wind-realtime", r.Endpoints.WindRealtime)
}

// FetchSolarWind7Day retrieves the latest reading from the 7-day product,
// used as a fallback when the realtime feed is unavailable (spec.md §4.B).
func (r *Registry) FetchSolarWind7Day(ctx context.Context) Outcome[SolarWindResult] {
	return r.fetchSolarWind(ctx, "solar-wind-7day", r.Endpoints.Wind7Day)
}

func (r *Registry) fetchSolarWind(ctx context.Context, name, url string) Outcome[SolarWindResult] {
	return run(ctx, name, r.Timeout, func(ctx context.Context) (SolarWindResult, error) {
		var rows []plasmaRow
		if err := getJSON(ctx, r.Client, url, &rows); err != nil {
			return SolarWindResult{}, err
		}
		if len(rows) < 2 {
			return SolarWindResult{}, fmt.Errorf("%s: empty series", name)
		}

		header := rows[0]
		densityCol := columnIndex(header, "density")
		speedCol := columnIndex(header, "speed")
		tempCol := columnIndex(header, "temperature")
		if densityCol < 0 || speedCol < 0 || tempCol < 0 {
			return SolarWindResult{}, fmt.Errorf("%s: missing expected columns", name)
		}

		last := rows[len(rows)-1]
		wind := model.SolarWind{
			Density:     parseFloatOr(last, densityCol, 0),
			Speed:       parseFloatOr(last, speedCol, 0),
			Temperature: parseFloatOr(last, tempCol, 0),
		}
		return SolarWindResult{Wind: wind}, nil
	})
}
