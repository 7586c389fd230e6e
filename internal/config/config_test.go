package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, `
paths:
  stateFile: state.json
  lockFile: checker.lock
  predictionFile: predictions.json
`)

	if cfg.MaxAlertHistory != 100 {
		t.Errorf("maxAlertHistory: got %d, want 100", cfg.MaxAlertHistory)
	}
	if cfg.LockTimeout != 10*time.Minute {
		t.Errorf("lockTimeout: got %v, want 10m", cfg.LockTimeout)
	}
	if cfg.Thresholds.Kp.Storm != 5 {
		t.Errorf("kp.storm: got %v, want 5", cfg.Thresholds.Kp.Storm)
	}
	if got := cfg.Cooldowns["kp-threshold"]; got != 180 {
		t.Errorf("cooldowns[kp-threshold]: got %d, want 180", got)
	}
	if got := cfg.Channels["critical"]; len(got) != 2 || got[0] != "signal" {
		t.Errorf("channels[critical]: got %v", got)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg := loadFromString(t, `
paths:
  stateFile: state.json
  lockFile: checker.lock
  predictionFile: predictions.json
thresholds:
  kp:
    storm: 6
cooldowns:
  kp-threshold: 30
quietHours:
  enabled: true
  start: 22
  end: 7
`)

	if cfg.Thresholds.Kp.Storm != 6 {
		t.Errorf("kp.storm: got %v, want 6", cfg.Thresholds.Kp.Storm)
	}
	if cfg.Cooldowns["kp-threshold"] != 30 {
		t.Errorf("cooldowns[kp-threshold]: got %d, want 30", cfg.Cooldowns["kp-threshold"])
	}
	if !cfg.QuietHours.In(23) || !cfg.QuietHours.In(0) || cfg.QuietHours.In(12) {
		t.Errorf("overnight quiet hours evaluated incorrectly")
	}
}

func TestLoad_MissingRequiredPath(t *testing.T) {
	_, err := loadStringErr(t, `
paths:
  stateFile: ""
`)
	if err == nil {
		t.Fatal("expected error for missing paths.stateFile")
	}
}

func TestQuietHours_In(t *testing.T) {
	cases := []struct {
		name string
		q    QuietHours
		hour int
		want bool
	}{
		{"disabled", QuietHours{Enabled: false, Start: 22, End: 7}, 23, false},
		{"normal-range-in", QuietHours{Enabled: true, Start: 9, End: 17}, 12, true},
		{"normal-range-out", QuietHours{Enabled: true, Start: 9, End: 17}, 18, false},
		{"overnight-in-late", QuietHours{Enabled: true, Start: 22, End: 7}, 23, true},
		{"overnight-in-early", QuietHours{Enabled: true, Start: 22, End: 7}, 3, true},
		{"overnight-out", QuietHours{Enabled: true, Start: 22, End: 7}, 12, false},
		{"inclusive-start", QuietHours{Enabled: true, Start: 9, End: 17}, 9, true},
		{"exclusive-end", QuietHours{Enabled: true, Start: 9, End: 17}, 17, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.In(tc.hour); got != tc.want {
				t.Errorf("In(%d): got %v, want %v", tc.hour, got, tc.want)
			}
		})
	}
}

// loadFromString writes content to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes content to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
