package model

import "time"

// SchemaVersion is the current CheckerState/PredictionState schema version.
// Loaders merge unknown/missing fields against defaults rather than reject
// on mismatch — the schema is forward-tolerant, not enforced.
const SchemaVersion = 1

// CheckerState is the persisted state carried between ticks. It is owned by
// the process holding the lock, loaded once per tick, transformed by pure
// functions, and written back atomically — never mutated concurrently.
type CheckerState struct {
	SchemaVersion int       `json:"schemaVersion"`
	LastRunAt     time.Time `json:"lastRunAt"`

	LastKp          float64 `json:"lastKp"`
	LastBz          float64 `json:"lastBz"`
	LastWindSpeed   float64 `json:"lastWindSpeed"`
	LastWindDensity float64 `json:"lastWindDensity"`

	// Falling-edge flags: reflect the *current* tick's observation, read back
	// next tick to detect recoveries (all-clear).
	KpWasAbove5       bool `json:"kpWasAbove5"`
	KpWasAbove7       bool `json:"kpWasAbove7"`
	BzWasBelow10      bool `json:"bzWasBelow10"`
	BzWasBelow15      bool `json:"bzWasBelow15"`
	WindWasAbove600   bool `json:"windWasAbove600"`
	WindWasAbove700   bool `json:"windWasAbove700"`
	DensityWasAbove20 bool `json:"densityWasAbove20"`

	// Known-id sets, replaced wholesale each tick from the current snapshot.
	KnownCMEs            map[string]KnownCME `json:"knownCMEs,omitempty"`
	KnownFlareIDs         map[string]bool     `json:"knownFlareIds,omitempty"`
	KnownHSSIDs           map[string]bool     `json:"knownHSSIds,omitempty"`
	KnownRegionNumbers    map[string]bool     `json:"knownRegionNumbers,omitempty"`
	KnownAlertProductIDs  map[string]bool     `json:"knownAlertProductIds,omitempty"`

	// LastCooldowns maps alert type -> timestamp of last emission of that type.
	LastCooldowns map[string]time.Time `json:"lastCooldowns,omitempty"`

	// DataHealth maps source name -> health record.
	DataHealth map[string]SourceHealth `json:"dataHealth,omitempty"`

	// AlertsSent is ordered by emission time ascending, capped to
	// config.MaxAlertHistory entries.
	AlertsSent []AlertRecord `json:"alertsSent,omitempty"`
}

// KnownCME is the last-observed forecast for a previously-seen Earth-directed
// CME, used to detect forecast revisions on subsequent ticks.
type KnownCME struct {
	PredictedKp      float64   `json:"predictedKp"`
	PredictedArrival time.Time `json:"predictedArrival"`
}

// SourceHealth is the per-fetch-source health record.
type SourceHealth struct {
	OK          bool      `json:"ok"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// AlertRecord is a dispatched alert retained in history for verification and
// auditing. It is a flattened, storage-friendly view of Alert.
type AlertRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Urgency   string    `json:"urgency"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultCheckerState returns a CheckerState with every map allocated and
// schemaVersion set — the baseline a fresh or corrupt state file is merged
// against.
func DefaultCheckerState() CheckerState {
	return CheckerState{
		SchemaVersion:        SchemaVersion,
		KnownCMEs:            map[string]KnownCME{},
		KnownFlareIDs:        map[string]bool{},
		KnownHSSIDs:          map[string]bool{},
		KnownRegionNumbers:   map[string]bool{},
		KnownAlertProductIDs: map[string]bool{},
		LastCooldowns:        map[string]time.Time{},
		DataHealth:           map[string]SourceHealth{},
		AlertsSent:           nil,
	}
}
