// Package config loads the static configuration consumed at startup by the
// checker daemon: thresholds, cooldowns, channel routing, quiet hours, and
// the filesystem paths for state/lock/prediction/log files.
//
// Load follows the teacher's pattern: start from defaults(), unmarshal YAML
// over it, then validate(). Unlike the teacher's agent config there is no
// Watch() here — spec.md requires the checker's own configuration to be
// static for the lifetime of a tick (config hot-reload is explicitly not one
// of this daemon's ambient concerns; see SPEC_FULL.md §3 for where fsnotify
// is used instead).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full static configuration for one checker process.
type Config struct {
	Thresholds   Thresholds          `yaml:"thresholds"`
	Cooldowns    map[string]int      `yaml:"cooldowns"` // alert type -> minutes; 0 = never suppress
	Channels     map[string][]string `yaml:"channels"`  // urgency -> ordered channel ids
	QuietHours   QuietHours          `yaml:"quietHours"`
	ActiveRegion ActiveRegionConfig  `yaml:"activeRegionEval"`

	MaxAlertHistory int           `yaml:"maxAlertHistory"`
	LockTimeout     time.Duration `yaml:"lockTimeout"`
	MaxLogSize      int64         `yaml:"maxLogSize"` // bytes

	Paths Paths `yaml:"paths"`

	Webhooks []WebhookTarget `yaml:"webhooks"`

	Prediction PredictionConfig `yaml:"prediction"`

	Metrics MetricsConfig `yaml:"metrics"`

	PredictInbox PredictInboxConfig `yaml:"predictInbox"`
}

// Thresholds holds every numeric crossing point used by the evaluator.
type Thresholds struct {
	Kp struct {
		Elevated float64 `yaml:"elevated"`
		Storm    float64 `yaml:"storm"`
		Major    float64 `yaml:"major"`
	} `yaml:"kp"`
	Bz struct {
		Moderate float64 `yaml:"moderate"`
		Strong   float64 `yaml:"strong"`
	} `yaml:"bz"`
	WindSpeed struct {
		Elevated float64 `yaml:"elevated"`
		High     float64 `yaml:"high"`
	} `yaml:"windSpeed"`
	Density struct {
		High float64 `yaml:"high"`
	} `yaml:"density"`
	CMERevision struct {
		KpJump float64 `yaml:"kpJump"`
	} `yaml:"cmeRevision"`
}

// ActiveRegionConfig gates rule 8 (§4.C) of the evaluator.
type ActiveRegionConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MFlareProb  float64 `yaml:"mFlareProb"`
	XFlareProb  float64 `yaml:"xFlareProb"`
}

// QuietHours configures the non-critical alert suppression window.
// Start/End are local hours in [0,24); inclusive start, exclusive end;
// Start > End means an overnight range (e.g. 22 -> 7).
type QuietHours struct {
	Enabled bool `yaml:"enabled"`
	Start   int  `yaml:"start"`
	End     int  `yaml:"end"`
}

// In reports whether hour (local, 0-23) falls inside the quiet window.
func (q QuietHours) In(hour int) bool {
	if !q.Enabled {
		return false
	}
	if q.Start == q.End {
		return false
	}
	if q.Start < q.End {
		return hour >= q.Start && hour < q.End
	}
	// Overnight range, e.g. 22 -> 7.
	return hour >= q.Start || hour < q.End
}

// Paths holds every filesystem location the daemon reads or writes.
type Paths struct {
	StateFile      string `yaml:"stateFile"`
	LockFile       string `yaml:"lockFile"`
	PredictionFile string `yaml:"predictionFile"`
	LogFile        string `yaml:"logFile"`
}

// WebhookTarget is one webhook delivery destination, resolved the teacher's
// way: the URL itself is never stored in config, only the name of an
// environment variable holding it.
type WebhookTarget struct {
	ID     string `yaml:"id"`   // channel id this target is mounted under, e.g. "signal"
	Type   string `yaml:"type"` // slack | teams | pagerduty | http
	URLEnv string `yaml:"url_env"`
}

// URL resolves the webhook URL from the environment.
func (w WebhookTarget) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// PredictionConfig is parsed from YAML with the same defaults as
// model.PredictionConfig. The commands seed a missing predictions.json from
// model.DefaultPredictionState, not from these values.
type PredictionConfig struct {
	VerificationWindowHours float64 `yaml:"verificationWindowHours"`
	CooldownHours           float64 `yaml:"cooldownHours"`
	MaxPredictions          int     `yaml:"maxPredictions"`
}

// MetricsConfig controls the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // e.g. ":9201"
}

// PredictInboxConfig controls the optional fsnotify-driven prediction
// file-drop watcher (SPEC_FULL.md §3).
type PredictInboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default cooldown minutes, named exactly as spec.md §6.
func defaultCooldowns() map[string]int {
	return map[string]int{
		"kp-threshold":  180,
		"kp-elevated":   360,
		"bz-threshold":  60,
		"wind-speed":    60,
		"wind-density":  120,
		"flare-m":       60,
		"flare-x":       0,
		"cme-earth":     0,
		"cme-revision":  60,
		"hss-arrival":   240,
		"active-region": 360,
		"all-clear":     60,
	}
}

func defaultChannels() map[string][]string {
	return map[string][]string{
		"critical": {"signal", "desktop"},
		"high":     {"signal", "desktop"},
		"moderate": {"desktop"},
		"info":     {"desktop"},
	}
}

// defaults returns a Config pre-populated with every default named in
// spec.md §6.
func defaults() *Config {
	cfg := &Config{
		Cooldowns:       defaultCooldowns(),
		Channels:        defaultChannels(),
		MaxAlertHistory: 100,
		LockTimeout:     10 * time.Minute,
		MaxLogSize:      1 << 20, // 1MB
		Paths: Paths{
			StateFile:      "checker-state.json",
			LockFile:       "checker.lock",
			PredictionFile: "predictions.json",
			LogFile:        "checker.log",
		},
		Prediction: PredictionConfig{
			VerificationWindowHours: 48,
			CooldownHours:           6,
			MaxPredictions:          500,
		},
	}
	cfg.Thresholds.Kp.Elevated = 4
	cfg.Thresholds.Kp.Storm = 5
	cfg.Thresholds.Kp.Major = 7
	cfg.Thresholds.Bz.Moderate = -10
	cfg.Thresholds.Bz.Strong = -15
	cfg.Thresholds.WindSpeed.Elevated = 600
	cfg.Thresholds.WindSpeed.High = 700
	cfg.Thresholds.Density.High = 20
	cfg.Thresholds.CMERevision.KpJump = 2
	cfg.ActiveRegion.Enabled = true
	cfg.ActiveRegion.MFlareProb = 30
	cfg.ActiveRegion.XFlareProb = 10
	return cfg
}

// Load reads and parses the YAML config file at path, applying defaults for
// any field the file omits, then validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// validate checks structural constraints that defaults alone cannot guarantee
// (e.g. a config file that explicitly zeroes a required path).
func validate(cfg *Config) error {
	if cfg.Paths.StateFile == "" {
		return fmt.Errorf("paths.stateFile is required")
	}
	if cfg.Paths.LockFile == "" {
		return fmt.Errorf("paths.lockFile is required")
	}
	if cfg.Paths.PredictionFile == "" {
		return fmt.Errorf("paths.predictionFile is required")
	}
	if cfg.MaxAlertHistory <= 0 {
		return fmt.Errorf("maxAlertHistory must be positive")
	}
	if cfg.LockTimeout <= 0 {
		return fmt.Errorf("lockTimeout must be positive")
	}
	if cfg.QuietHours.Enabled {
		if cfg.QuietHours.Start < 0 || cfg.QuietHours.Start > 23 || cfg.QuietHours.End < 0 || cfg.QuietHours.End > 23 {
			return fmt.Errorf("quietHours.start/end must be in [0,23]")
		}
	}
	for _, wh := range cfg.Webhooks {
		switch wh.Type {
		case "slack", "teams", "pagerduty", "http":
		default:
			return fmt.Errorf("webhooks: unknown type %q for id %q", wh.Type, wh.ID)
		}
	}
	return nil
}
