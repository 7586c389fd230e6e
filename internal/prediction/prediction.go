// Package prediction implements the prediction store and verifier (spec.md
// §4.H): cooldown-gated submission, window-expiry-driven hit/miss
// verification against the tick's observed events, and a binomial-test
// scorecard summarizing accuracy against a precomputed base rate.
//
// Grounded on the teacher's alerts.Engine evaluation-over-a-value style
// (see internal/evaluate and internal/cooldown), generalized from
// alert-candidate evaluation to prediction lifecycle management — both are
// pure functions over an explicit prior state plus the current tick's
// observations.
package prediction

import (
	"fmt"
	"math"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// CooldownError is returned by Submit when a prior prediction is still
// within its cooldown window. CooldownEnds lets the caller answer the
// read-endpoint's {error: "cooldown", cooldownEnds} contract (spec.md §6).
type CooldownError struct {
	CooldownEnds time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("prediction: cooldown active until %s", e.CooldownEnds.Format(time.RFC3339))
}

// Submit appends a new pending prediction if the cooldown has elapsed,
// trims to MaxPredictions, and returns the updated state and the new
// prediction. It returns a *CooldownError (not a plain error) when the most
// recent prediction is too recent to allow another.
func Submit(state model.PredictionState, note string, now time.Time) (model.PredictionState, model.Prediction, error) {
	cfg := state.Config
	if len(state.Predictions) > 0 {
		last := state.Predictions[len(state.Predictions)-1]
		cooldownEnds := last.Timestamp.Add(time.Duration(cfg.CooldownHours * float64(time.Hour)))
		if now.Before(cooldownEnds) {
			return state, model.Prediction{}, &CooldownError{CooldownEnds: cooldownEnds}
		}
	}

	p := model.Prediction{
		ID:          fmt.Sprintf("pred-%d", now.UnixNano()),
		Timestamp:   now,
		Note:        note,
		Status:      model.StatusPending,
		WindowHours: cfg.VerificationWindowHours,
		WindowEnd:   now.Add(time.Duration(cfg.VerificationWindowHours * float64(time.Hour))),
	}

	state.Predictions = append(state.Predictions, p)
	if cfg.MaxPredictions > 0 && len(state.Predictions) > cfg.MaxPredictions {
		state.Predictions = state.Predictions[len(state.Predictions)-cfg.MaxPredictions:]
	}
	return state, p, nil
}

// matchableAlertTypes are the K.alertsSent types that count as evidence of
// a significant space-weather event for verification purposes (spec.md
// §4.H).
var matchableAlertTypes = map[string]bool{
	"flare-m":      true,
	"flare-x":      true,
	"kp-threshold": true,
	"kp-elevated":  true,
	"cme-earth":    true,
	"bz-threshold": true,
	"wind-speed":   true,
}

// VerifyResult pairs a verified prediction with the info-urgency result
// alert the caller should dispatch.
type VerifyResult struct {
	Prediction model.Prediction
	Alert      model.Alert
}

// Verify resolves every pending prediction whose window has closed against
// this tick's observed events, drawn from the dispatched alert history and
// the current snapshot (spec.md §4.H). It does not mutate checkerState;
// the caller persists the returned PredictionState separately, after the
// checker state save, matching spec.md §4.H's ordering requirement.
func Verify(state model.PredictionState, alertsSent []model.AlertRecord, snap model.Snapshot, now time.Time) (model.PredictionState, []VerifyResult) {
	var results []VerifyResult
	state.Predictions = append([]model.Prediction(nil), state.Predictions...)

	for i, p := range state.Predictions {
		if p.Status != model.StatusPending || p.WindowEnd.After(now) {
			continue
		}

		matches := matchedEvents(p, alertsSent, snap)
		verifiedAt := now
		p.VerifiedAt = &verifiedAt
		p.MatchedEvents = matches
		if len(matches) > 0 {
			p.Status = model.StatusHit
		} else {
			p.Status = model.StatusMiss
		}
		state.Predictions[i] = p

		results = append(results, VerifyResult{
			Prediction: p,
			Alert:      resultAlert(p, now),
		})
	}

	return state, results
}

func matchedEvents(p model.Prediction, alertsSent []model.AlertRecord, snap model.Snapshot) []model.MatchedEvent {
	seen := map[string]bool{}
	var matches []model.MatchedEvent

	add := func(kind, description string, ts time.Time) {
		if ts.Before(p.Timestamp) || ts.After(p.WindowEnd) {
			return
		}
		key := fmt.Sprintf("%s|%d", kind, ts.UnixNano())
		if seen[key] {
			return
		}
		seen[key] = true
		matches = append(matches, model.MatchedEvent{Type: kind, Description: description, Timestamp: ts})
	}

	for _, a := range alertsSent {
		if matchableAlertTypes[a.Type] {
			add(a.Type, a.Title, a.Timestamp)
		}
	}

	for _, f := range snap.RecentFlares {
		letter := f.Letter()
		if letter == "M" || letter == "X" {
			add("flare", f.ClassType+" Flare", f.BeginTime)
		}
	}

	for _, s := range snap.RecentStorms {
		if s.KpIndex >= 5 {
			add("storm", fmt.Sprintf("Kp %.1f Storm", s.KpIndex), s.Observed)
		}
	}

	for _, c := range snap.EarthDirectedCMEs {
		add("cme", "Earth-Directed CME", c.PredictedArrival)
	}

	return matches
}

func resultAlert(p model.Prediction, now time.Time) model.Alert {
	title := "Prediction Missed"
	body := fmt.Sprintf("Prediction submitted %s found no matching event in its %.0fh window.", p.Timestamp.Format(time.RFC3339), p.WindowHours)
	if p.Status == model.StatusHit {
		title = "Prediction Confirmed"
		body = fmt.Sprintf("Prediction submitted %s matched %d event(s) in its %.0fh window.", p.Timestamp.Format(time.RFC3339), len(p.MatchedEvents), p.WindowHours)
	}

	return model.Alert{
		ID:        fmt.Sprintf("prediction-result-%s-%d", p.ID, now.UnixNano()),
		Type:      "prediction-result",
		Urgency:   model.UrgencyInfo,
		Title:     title,
		Body:      body,
		Timestamp: now,
	}
}

// Score computes the scorecard over state (spec.md §4.H, invariant I):
// hits/misses/pending, hitRate (undefined if hits+misses==0), days tracked
// since the first prediction, and a one-tailed binomial p-value P(X>=hits)
// against the configured base rate, computed in log-space.
func Score(state model.PredictionState, now time.Time) model.Scorecard {
	var sc model.Scorecard
	var first time.Time

	for i, p := range state.Predictions {
		if i == 0 || p.Timestamp.Before(first) {
			first = p.Timestamp
		}
		switch p.Status {
		case model.StatusHit:
			sc.Hits++
		case model.StatusMiss:
			sc.Misses++
		default:
			sc.Pending++
		}
	}

	if n := sc.Hits + sc.Misses; n > 0 {
		rate := float64(sc.Hits) / float64(n)
		sc.HitRate = &rate
	}

	if !first.IsZero() {
		sc.TotalDaysTracked = int(now.Sub(first) / (24 * time.Hour))
	}

	if state.Config.BaseRate != nil {
		n := sc.Hits + sc.Misses
		if n > 0 {
			p := binomialUpperTailPValue(sc.Hits, n, *state.Config.BaseRate)
			sc.PValue = &p
		}
	}

	return sc
}

// binomialUpperTailPValue computes P(X >= hits) for X ~ Binomial(n, p),
// summing the PMF in log-space to avoid overflow/underflow for large n.
func binomialUpperTailPValue(hits, n int, p float64) float64 {
	if p <= 0 {
		if hits == 0 {
			return 1
		}
		return 0
	}
	if p >= 1 {
		return 1
	}

	sum := 0.0
	for k := hits; k <= n; k++ {
		sum += math.Exp(logBinomialPMF(k, n, p))
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

func logBinomialPMF(k, n int, p float64) float64 {
	return logChoose(n, k) + float64(k)*math.Log(p) + float64(n-k)*math.Log(1-p)
}

func logChoose(n, k int) float64 {
	return lgamma(n+1) - lgamma(k+1) - lgamma(n-k+1)
}

func lgamma(x int) float64 {
	v, _ := math.Lgamma(float64(x))
	return v
}
