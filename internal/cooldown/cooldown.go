// Package cooldown implements the cooldown & quiet-hours filter (spec.md
// §4.D): drops candidate alerts whose type is still within its cooldown
// window, and drops non-critical alerts during the configured quiet-hours
// window. Unlike the teacher's alerts.Engine (a long-lived, mutex-guarded
// map of lastFire times), this filter is a pure function over the
// lastCooldowns map carried in CheckerState — consistent with spec.md §9's
// "CheckerState is a value, not a long-lived object" design note.
package cooldown

import (
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// Filter drops alerts still within their type's cooldown, and non-critical
// alerts during quiet hours, returning the survivors in input order. It does
// not touch lastCooldowns; AdvanceCooldowns builds the next map from the
// alerts that were dispatched.
func Filter(candidates []model.Alert, lastCooldowns map[string]time.Time, cooldownMinutes map[string]int, quietHoursActive bool, now time.Time) []model.Alert {
	survivors := make([]model.Alert, 0, len(candidates))

	for _, a := range candidates {
		if inCooldown(a.Type, lastCooldowns, cooldownMinutes, now) {
			continue
		}
		if quietHoursActive && a.Urgency != model.UrgencyCritical {
			continue
		}
		survivors = append(survivors, a)
	}

	return survivors
}

// inCooldown reports whether an alert of the given type was emitted too
// recently to fire again. A cooldown of 0 minutes means "never suppress".
func inCooldown(alertType string, lastCooldowns map[string]time.Time, cooldownMinutes map[string]int, now time.Time) bool {
	minutes, ok := cooldownMinutes[alertType]
	if !ok || minutes <= 0 {
		return false
	}
	last, fired := lastCooldowns[alertType]
	if !fired {
		return false
	}
	return now.Sub(last) < time.Duration(minutes)*time.Minute
}

// AdvanceCooldowns returns a copy of lastCooldowns with now recorded against
// every type present in dispatched — called after dispatch succeeds so
// cooldowns reflect actual emission (spec.md §5: "state persistence happens
// after dispatch").
func AdvanceCooldowns(lastCooldowns map[string]time.Time, dispatched []model.Alert, now time.Time) map[string]time.Time {
	next := make(map[string]time.Time, len(lastCooldowns)+len(dispatched))
	for k, v := range lastCooldowns {
		next[k] = v
	}
	for _, a := range dispatched {
		next[a.Type] = now
	}
	return next
}
