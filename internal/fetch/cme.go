package fetch

import (
	"context"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// cmeRecord is one WSA-ENLIL CME analysis entry.
type cmeRecord struct {
	ID                 string  `json:"cme_id"`
	IsEarthDirected    bool    `json:"is_earth_directed"`
	Speed              float64 `json:"speed"`
	EstimatedKp        float64 `json:"estimated_kp"`
	EstimatedShockTime string  `json:"estimated_shock_arrival_time"`
}

// CMEResult is the full set of CMEs in the upstream analysis window, split
// into the complete list and the earth-directed subset.
type CMEResult struct {
	All           []model.CME
	EarthDirected []model.CME
}

// FetchCMEs retrieves coronal mass ejection analyses from the WSA-ENLIL feed.
func (r *Registry) FetchCMEs(ctx context.Context) Outcome[CMEResult] {
	return run(ctx, "cme-analysis", r.Timeout, func(ctx context.Context) (CMEResult, error) {
		var records []cmeRecord
		if err := getJSON(ctx, r.Client, r.Endpoints.CMEAnalysis, &records); err != nil {
			return CMEResult{}, err
		}

		result := CMEResult{
			All:           make([]model.CME, 0, len(records)),
			EarthDirected: make([]model.CME, 0),
		}
		for _, rec := range records {
			cme := model.CME{
				ID:            rec.ID,
				EarthDirected: rec.IsEarthDirected,
				Speed:         rec.Speed,
				PredictedKp:   rec.EstimatedKp,
			}
			if arrival, err := time.Parse(time.RFC3339, rec.EstimatedShockTime); err == nil {
				cme.PredictedArrival = arrival
			}
			result.All = append(result.All, cme)
			if cme.EarthDirected {
				result.EarthDirected = append(result.EarthDirected, cme)
			}
		}
		return result, nil
	})
}
