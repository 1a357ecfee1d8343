// Package config loads pipeline settings from a YAML file. Everything
// has a working default; a config file only needs the keys it changes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartsales/lead-pipeline/internal/score"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

type Config struct {
	Workers          int          `yaml:"workers"`
	MaxRetries       int          `yaml:"max_retries"`
	RequestTimeout   Duration     `yaml:"request_timeout"`
	RateLimitRPS     float64      `yaml:"rate_limit_rps"`
	QualifyThreshold int          `yaml:"qualify_threshold"`
	FollowUpDelay    Duration     `yaml:"followup_delay"`
	FollowUpNote     string       `yaml:"followup_note"`
	Sender           string       `yaml:"sender"`
	Rules            []score.Rule `yaml:"rules"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Workers:          4,
		MaxRetries:       2,
		RequestTimeout:   Duration(30 * time.Second),
		RateLimitRPS:     0,
		QualifyThreshold: score.DefaultThreshold,
		FollowUpDelay:    Duration(5 * time.Second),
		FollowUpNote:     "1st follow up",
		Sender:           "",
		Rules:            score.DefaultRules(),
	}
}

// Load reads a YAML config file over the defaults. A missing rules key
// keeps the default scoring policy.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Workers <= 0 {
		return cfg, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}
