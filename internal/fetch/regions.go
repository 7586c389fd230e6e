package fetch

import (
	"context"

	"github.com/spacewatch/checker/internal/model"
)

// regionRecord mirrors one entry of NOAA's solar_regions.json product.
type regionRecord struct {
	Region     int    `json:"region"`
	Location   string `json:"location"`
	MagClass   string `json:"mag_class"`
	NumSpots   int    `json:"number_spots"`
	FlareProbC float64 `json:"c_flare_probability"`
	FlareProbM float64 `json:"m_flare_probability"`
	FlareProbX float64 `json:"x_flare_probability"`
	ProtonProb float64 `json:"proton_probability"`
}

// RegionsResult is the full set of currently numbered active regions.
type RegionsResult struct {
	Regions []model.ActiveRegion
}

// FetchActiveRegions retrieves the current sunspot active region catalogue.
func (r *Registry) FetchActiveRegions(ctx context.Context) Outcome[RegionsResult] {
	return run(ctx, "active-regions", r.Timeout, func(ctx context.Context) (RegionsResult, error) {
		var records []regionRecord
		if err := getJSON(ctx, r.Client, r.Endpoints.ActiveRegions, &records); err != nil {
			return RegionsResult{}, err
		}

		regions := make([]model.ActiveRegion, 0, len(records))
		for _, rec := range records {
			regions = append(regions, model.ActiveRegion{
				RegionNumber:  rec.Region,
				Location:      rec.Location,
				MagneticClass: rec.MagClass,
				NumberSpots:   rec.NumSpots,
				FlareProbC:    rec.FlareProbC,
				FlareProbM:    rec.FlareProbM,
				FlareProbX:    rec.FlareProbX,
				ProtonProb:    rec.ProtonProb,
			})
		}
		return RegionsResult{Regions: regions}, nil
	})
}
