package fetch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// xrayPoint is one GOES long-wavelength X-ray flux sample.
type xrayPoint struct {
	TimeTag string  `json:"time_tag"`
	Flux    float64 `json:"flux"`
	Energy  string  `json:"energy"`
}

// XrayResult is the latest long-band GOES X-ray flux reading, in W/m^2.
type XrayResult struct {
	Flux float64
}

// FetchXrayFlux retrieves the latest 0.1-0.8nm GOES X-ray flux reading. The
// 6-hour product carries both 0.05-0.4nm ("short") and 0.1-0.8nm ("long")
// channels; only the long channel is used for R-scale derivation.
func (r *Registry) FetchXrayFlux(ctx context.Context) Outcome[XrayResult] {
	return run(ctx, "xray-flux", r.Timeout, func(ctx context.Context) (XrayResult, error) {
		var points []xrayPoint
		if err := getJSON(ctx, r.Client, r.Endpoints.XrayFlux, &points); err != nil {
			return XrayResult{}, err
		}

		var latest *xrayPoint
		for i := range points {
			if points[i].Energy != "0.1-0.8nm" {
				continue
			}
			if latest == nil || points[i].TimeTag > latest.TimeTag {
				p := points[i]
				latest = &p
			}
		}
		if latest == nil {
			return XrayResult{}, fmt.Errorf("xray-flux: no long-channel samples")
		}
		return XrayResult{Flux: latest.Flux}, nil
	})
}

// flareRecord is one entry from the xray-flares-7-day product.
type flareRecord struct {
	FlareID   string `json:"flare_id"`
	BeginTime string `json:"begin_time"`
	MaxClass  string `json:"max_class"`
}

// FlaresResult is the ordered (oldest-first) list of flares observed in the
// lookback window of the upstream product.
type FlaresResult struct {
	Flares []model.Flare
}

// FetchFlares retrieves recently observed solar flares.
func (r *Registry) FetchFlares(ctx context.Context) Outcome[FlaresResult] {
	return run(ctx, "flares", r.Timeout, func(ctx context.Context) (FlaresResult, error) {
		var records []flareRecord
		if err := getJSON(ctx, r.Client, r.Endpoints.Flares, &records); err != nil {
			return FlaresResult{}, err
		}

		flares := make([]model.Flare, 0, len(records))
		for _, rec := range records {
			begin, err := time.Parse(time.RFC3339, rec.BeginTime)
			if err != nil {
				continue
			}
			flares = append(flares, model.Flare{
				ID:        rec.FlareID,
				ClassType: rec.MaxClass,
				BeginTime: begin,
			})
		}
		sort.Slice(flares, func(i, j int) bool { return flares[i].BeginTime.Before(flares[j].BeginTime) })
		return FlaresResult{Flares: flares}, nil
	})
}
