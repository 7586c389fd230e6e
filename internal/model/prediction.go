package model

import "time"

// PredictionStatus is the lifecycle state of a submitted prediction.
type PredictionStatus string

const (
	StatusPending PredictionStatus = "pending"
	StatusHit     PredictionStatus = "hit"
	StatusMiss    PredictionStatus = "miss"
)

// MatchedEvent is one observed event that fell inside a prediction's
// verification window, used as evidence for a hit.
type MatchedEvent struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Prediction is one user-submitted prognostic entry and its eventual
// verification outcome.
type Prediction struct {
	ID            string           `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Note          string           `json:"note,omitempty"`
	Status        PredictionStatus `json:"status"`
	VerifiedAt    *time.Time       `json:"verifiedAt,omitempty"`
	WindowHours   float64          `json:"windowHours"`
	WindowEnd     time.Time        `json:"windowEnd"`
	MatchedEvents []MatchedEvent   `json:"matchedEvents,omitempty"`
}

// PredictionConfig holds the tunables for submission cooldown, verification
// window, retention, and the precomputed base rate used by the scorecard.
type PredictionConfig struct {
	VerificationWindowHours float64    `json:"verificationWindowHours"`
	CooldownHours           float64    `json:"cooldownHours"`
	MaxPredictions          int        `json:"maxPredictions"`
	BaseRate                *float64   `json:"baseRate,omitempty"`
	BaseRateComputedAt      *time.Time `json:"baseRateComputedAt,omitempty"`
	BaseRateSampleWindows   int        `json:"baseRateSampleWindows,omitempty"`
}

// DefaultPredictionConfig returns the defaults named in spec.md §3/§6.
func DefaultPredictionConfig() PredictionConfig {
	return PredictionConfig{
		VerificationWindowHours: 48,
		CooldownHours:           6,
		MaxPredictions:          500,
	}
}

// PredictionState is the persisted prediction log and its configuration.
type PredictionState struct {
	SchemaVersion int              `json:"schemaVersion"`
	Predictions   []Prediction     `json:"predictions"`
	Config        PredictionConfig `json:"config"`
}

// DefaultPredictionState returns an empty, schema-stamped PredictionState.
func DefaultPredictionState() PredictionState {
	return PredictionState{
		SchemaVersion: SchemaVersion,
		Predictions:   nil,
		Config:        DefaultPredictionConfig(),
	}
}

// Scorecard is the derived summary over a PredictionState, computed fresh on
// every read rather than persisted.
type Scorecard struct {
	Hits              int      `json:"hits"`
	Misses            int      `json:"misses"`
	Pending           int      `json:"pending"`
	HitRate           *float64 `json:"hitRate,omitempty"`
	TotalDaysTracked  int      `json:"totalDaysTracked"`
	PValue            *float64 `json:"pValue,omitempty"`
}
