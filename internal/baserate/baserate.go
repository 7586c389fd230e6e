// Package baserate implements the offline one-shot base-rate sampler
// spec.md §4.H describes in prose: sample a configurable number of random
// windows of a given length across a multi-year history of significant
// events, and report the empirical fraction of windows containing at
// least one.
//
// spec.md's Non-goals explicitly exclude historical backfill "inside the
// live pipeline" — this package is deliberately outside it, run once by
// cmd/spacewatch-baserate and consumed as a precomputed value.
package baserate

import (
	"math/rand"
	"sort"
	"time"
)

// EventType is a significant-event category counted toward the base rate
// (spec.md §4.H: "M+ flare, Kp >= 5 storm, Earth-directed CME").
type EventType string

const (
	EventFlare EventType = "flare"
	EventStorm EventType = "storm"
	EventCME   EventType = "cme"
)

// Event is one historical significant-event record loaded from the
// history file.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the computed base rate and the sampling parameters that
// produced it, persisted verbatim into model.PredictionConfig's
// baseRate/baseRateComputedAt/baseRateSampleWindows fields.
type Result struct {
	BaseRate      float64
	ComputedAt    time.Time
	SampleWindows int
}

// Sample draws `windows` random windows of length windowHours from the
// span covered by events, using rng for window start selection, and
// returns the fraction of windows containing at least one event.
//
// Events need not be sorted on input; Sample sorts its own copy. Events
// outside [earliest, latest-windowHours] can never be a window's start,
// so the random draw is restricted to that range.
func Sample(events []Event, windowHours float64, windows int, rng *rand.Rand, now time.Time) Result {
	if len(events) == 0 || windows <= 0 {
		return Result{BaseRate: 0, ComputedAt: now, SampleWindows: 0}
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	windowLen := time.Duration(windowHours * float64(time.Hour))
	earliest := sorted[0].Timestamp
	latest := sorted[len(sorted)-1].Timestamp
	span := latest.Sub(earliest) - windowLen
	if span <= 0 {
		// History is shorter than one window; every draw covers it all.
		span = 0
	}

	hits := 0
	for i := 0; i < windows; i++ {
		var offset time.Duration
		if span > 0 {
			offset = time.Duration(rng.Int63n(int64(span)))
		}
		start := earliest.Add(offset)
		end := start.Add(windowLen)
		if hasEventInWindow(sorted, start, end) {
			hits++
		}
	}

	return Result{
		BaseRate:      float64(hits) / float64(windows),
		ComputedAt:    now,
		SampleWindows: windows,
	}
}

func hasEventInWindow(sorted []Event, start, end time.Time) bool {
	i := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Timestamp.Before(start) })
	return i < len(sorted) && sorted[i].Timestamp.Before(end)
}
