package cooldown

import (
	"testing"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

func TestFilter_DropsWithinCooldown(t *testing.T) {
	now := time.Now()
	candidates := []model.Alert{
		{Type: model.TypeKpThreshold, Urgency: model.UrgencyHigh},
	}
	lastCooldowns := map[string]time.Time{model.TypeKpThreshold: now.Add(-10 * time.Minute)}
	cooldowns := map[string]int{model.TypeKpThreshold: 180}

	out := Filter(candidates, lastCooldowns, cooldowns, false, now)
	if len(out) != 0 {
		t.Fatalf("expected alert suppressed by cooldown, got %+v", out)
	}
}

func TestFilter_AllowsAfterCooldownExpires(t *testing.T) {
	now := time.Now()
	candidates := []model.Alert{
		{Type: model.TypeKpThreshold, Urgency: model.UrgencyHigh},
	}
	lastCooldowns := map[string]time.Time{model.TypeKpThreshold: now.Add(-181 * time.Minute)}
	cooldowns := map[string]int{model.TypeKpThreshold: 180}

	out := Filter(candidates, lastCooldowns, cooldowns, false, now)
	if len(out) != 1 {
		t.Fatalf("expected alert to survive expired cooldown, got %+v", out)
	}
}

func TestFilter_ZeroCooldownNeverSuppresses(t *testing.T) {
	now := time.Now()
	candidates := []model.Alert{{Type: model.TypeFlareX, Urgency: model.UrgencyCritical}}
	lastCooldowns := map[string]time.Time{model.TypeFlareX: now}
	cooldowns := map[string]int{model.TypeFlareX: 0}

	out := Filter(candidates, lastCooldowns, cooldowns, false, now)
	if len(out) != 1 {
		t.Fatalf("zero-minute cooldown should never suppress, got %+v", out)
	}
}

func TestFilter_QuietHoursDropsNonCritical(t *testing.T) {
	now := time.Now()
	candidates := []model.Alert{
		{Type: model.TypeKpElevated, Urgency: model.UrgencyInfo},
		{Type: model.TypeFlareX, Urgency: model.UrgencyCritical},
	}

	out := Filter(candidates, nil, nil, true, now)
	if len(out) != 1 || out[0].Urgency != model.UrgencyCritical {
		t.Fatalf("expected only the critical alert to survive quiet hours, got %+v", out)
	}
}

func TestAdvanceCooldowns_OnlyDispatchedTypesAdvance(t *testing.T) {
	now := time.Now()
	prior := map[string]time.Time{model.TypeKpThreshold: now.Add(-time.Hour)}
	dispatched := []model.Alert{{Type: model.TypeFlareM}}

	next := AdvanceCooldowns(prior, dispatched, now)
	if !next[model.TypeFlareM].Equal(now) {
		t.Errorf("flare-m cooldown not advanced: %v", next[model.TypeFlareM])
	}
	if !next[model.TypeKpThreshold].Equal(prior[model.TypeKpThreshold]) {
		t.Errorf("kp-threshold cooldown should be untouched, got %v", next[model.TypeKpThreshold])
	}
}
