package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFetchFailuresTotal_IncrementsPerSource(t *testing.T) {
	FetchFailuresTotal.Reset()
	FetchFailuresTotal.WithLabelValues("planetaryKIndex").Inc()
	FetchFailuresTotal.WithLabelValues("planetaryKIndex").Inc()
	FetchFailuresTotal.WithLabelValues("xrayFlux").Inc()

	if got := testutil.ToFloat64(FetchFailuresTotal.WithLabelValues("planetaryKIndex")); got != 2 {
		t.Errorf("planetaryKIndex failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(FetchFailuresTotal.WithLabelValues("xrayFlux")); got != 1 {
		t.Errorf("xrayFlux failures = %v, want 1", got)
	}
}

func TestAlertsDispatchedTotal_LabelsByTypeAndUrgency(t *testing.T) {
	AlertsDispatchedTotal.Reset()
	AlertsDispatchedTotal.WithLabelValues("kp-threshold", "high").Inc()

	if got := testutil.ToFloat64(AlertsDispatchedTotal.WithLabelValues("kp-threshold", "high")); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}

func TestTickDuration_ObservesWithoutPanicking(t *testing.T) {
	TickDuration.Observe(0.42)
}
