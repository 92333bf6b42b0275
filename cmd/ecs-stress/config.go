package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
)

type Config struct {
	Run     RunConfig     `toml:"run"`
	Profile ProfileConfig `toml:"profile"`
	Logging LoggingConfig `toml:"logging"`
}

type RunConfig struct {
	Duration   time.Duration `toml:"duration"`
	Entities   int           `toml:"entities"`
	Components int           `toml:"components"`
	Systems    int           `toml:"systems"`
	SpawnRate  float64       `toml:"spawn_rate"` // entities per second
	ChurnRate  float64       `toml:"churn_rate"` // fraction of matched entities mutated per tick (0.0-1.0)
	Lifetime   time.Duration `toml:"lifetime"`   // mean lifetime of spawned entities
	Seed       int64         `toml:"seed"`
}

type ProfileConfig struct {
	Mode           string `toml:"mode"` // "none", "cpu" or "mem"
	Path           string `toml:"path"`
	GCPauseMetrics bool   `toml:"gc_pause_metrics"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// loadConfig returns the defaults overlaid with the file at path. An empty
// path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, eris.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Run.Duration <= 0:
		return eris.New("run.duration must be positive")
	case c.Run.Components < 2:
		return eris.New("run.components must be at least 2")
	case c.Run.Entities < 0 || c.Run.Systems < 0:
		return eris.New("run.entities and run.systems must not be negative")
	case c.Run.ChurnRate < 0 || c.Run.ChurnRate > 1:
		return eris.New("run.churn_rate must be between 0 and 1")
	}
	switch c.Profile.Mode {
	case "", "none", "cpu", "mem":
	default:
		return eris.Errorf("unknown profile.mode %q", c.Profile.Mode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Run: RunConfig{
			Duration:   10 * time.Second,
			Entities:   10000,
			Components: 32,
			Systems:    16,
			SpawnRate:  500,
			ChurnRate:  0.01,
			Lifetime:   5 * time.Second,
			Seed:       1,
		},
		Profile: ProfileConfig{
			Mode: "none",
			Path: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
