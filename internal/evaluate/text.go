package evaluate

import (
	"fmt"
	"math"
	"time"
)

// kpImpact is the fixed impact-sentence lookup table for Kp buckets 4..9
// (spec.md §4.C numeric semantics).
var kpImpact = map[int]string{
	4: "Minor geomagnetic unrest; aurora may be visible at very high latitudes.",
	5: "Minor storm: weak power grid fluctuations possible; aurora visible at high latitudes.",
	6: "Moderate storm: high-latitude power systems may see voltage alarms; aurora visible at mid latitudes.",
	7: "Strong storm: voltage corrections may be required; aurora visible as low as mid latitudes.",
	8: "Severe storm: widespread voltage control problems possible; aurora visible at low latitudes.",
	9: "Extreme storm: power grid collapse or blackouts possible; aurora visible at very low latitudes.",
}

// bzImpact is the fixed impact-sentence lookup table for Bz magnitude
// buckets -10/-15/-20.
var bzImpact = map[int]string{
	10: "Southward IMF may enhance geomagnetic coupling.",
	15: "Strongly southward IMF increases storm-level coupling risk.",
	20: "Extreme southward IMF; high risk of significant geomagnetic coupling.",
}

// windImpact is the fixed impact-sentence lookup table for solar wind speed
// buckets 600/700.
var windImpact = map[int]string{
	600: "Elevated solar wind speed may enhance high-latitude geomagnetic activity.",
	700: "High solar wind speed increases risk of geomagnetic storm activity.",
}

// flareImpact is the fixed impact-sentence lookup table for flare letters M/X.
var flareImpact = map[string]string{
	"M": "M-class flares can cause minor to moderate radio blackouts on the sunlit side of Earth.",
	"X": "X-class flares can cause wide-area radio blackouts and long-duration radio outages on the sunlit side of Earth.",
}

// kpBucket clamps a Kp value to the impact table's domain, per spec.md §4.C:
// "min(floor(kp), 9)". A non-positive kp (the edge case for a missing
// predictedKp) returns 0, the sentinel callers use to suppress the sentence.
func kpBucket(kp float64) int {
	if kp <= 0 {
		return 0
	}
	b := int(math.Floor(kp))
	if b < 4 {
		b = 4
	}
	if b > 9 {
		b = 9
	}
	return b
}

// kpImpactSentence returns the impact sentence for kp, or "" if kp is
// non-positive (missing predictedKp suppresses the sentence per spec.md §4.C
// edge cases).
func kpImpactSentence(kp float64) string {
	b := kpBucket(kp)
	if b == 0 {
		return ""
	}
	return kpImpact[b]
}

// bzBucket buckets a Bz magnitude (nT, already made positive by the caller)
// into the nearest defined threshold at or below it.
func bzBucket(magnitude float64) int {
	switch {
	case magnitude >= 20:
		return 20
	case magnitude >= 15:
		return 15
	case magnitude >= 10:
		return 10
	default:
		return 0
	}
}

func bzImpactSentence(bz float64) string {
	b := bzBucket(-bz)
	if b == 0 {
		return ""
	}
	return bzImpact[b]
}

func windBucket(speed float64) int {
	switch {
	case speed >= 700:
		return 700
	case speed >= 600:
		return 600
	default:
		return 0
	}
}

func windImpactSentence(speed float64) string {
	b := windBucket(speed)
	if b == 0 {
		return ""
	}
	return windImpact[b]
}

func flareImpactSentence(letter string) string {
	return flareImpact[letter]
}

// formatETA renders a predicted arrival time relative to now, per spec.md
// §4.C edge cases: "already past predicted arrival", "imminent", "~Nh", or
// "~Nd".
func formatETA(arrival, now time.Time) string {
	if arrival.IsZero() {
		return "unknown"
	}
	diff := arrival.Sub(now)
	if diff <= 0 {
		return "already past predicted arrival"
	}
	if diff <= time.Hour {
		return "imminent"
	}
	if diff < 24*time.Hour {
		hours := int(math.Round(diff.Hours()))
		return fmt.Sprintf("~%dh", hours)
	}
	days := int(math.Round(diff.Hours() / 24))
	return fmt.Sprintf("~%dd", days)
}
