package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one CSV-backed data feed.
type FeedConfig struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Timezone string `yaml:"timezone"`
	Primary  bool   `yaml:"primary"`
}

// Config holds all application configuration.
type Config struct {
	Feeds []FeedConfig `yaml:"feeds"`
	Align struct {
		ClockFeed string   `yaml:"clock_feed"` // empty selects the primary feed
		FillGaps  bool     `yaml:"fill_gaps"`
		Back      int      `yaml:"back"` // last-N window; 0 means full range
		SkipLines []string `yaml:"skip_lines"`
	} `yaml:"align"`
	Output struct {
		CSVPath    string `yaml:"csv_path"`
		TimeFormat string `yaml:"time_format"` // strftime pattern
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CLOCK_FEED"); v != "" {
		cfg.Align.ClockFeed = v
	}
	if v := os.Getenv("FILL_GAPS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Align.FillGaps = b
		}
	}
	if v := os.Getenv("ALIGN_BACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Align.Back = n
		}
	}
	if v := os.Getenv("CSV_OUT"); v != "" {
		cfg.Output.CSVPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SNAPSHOT_CRON"); v != "" {
		cfg.Schedule.SnapshotCron = v
	}

	// Defaults
	if cfg.Output.TimeFormat == "" {
		cfg.Output.TimeFormat = "%Y-%m-%d %H:%M:%S"
	}
	if cfg.Output.CSVPath == "" {
		cfg.Output.CSVPath = "data/aligned.csv"
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "0 */5 * * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]bool)
	primaries := 0
	for i, f := range c.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feeds[%d].name is required", i)
		}
		if f.Path == "" {
			return fmt.Errorf("feed %q: path is required", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate feed name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("at most one feed may be primary")
	}
	if c.Align.Back < 0 {
		return fmt.Errorf("align.back must not be negative")
	}
	if c.Align.ClockFeed != "" && !seen[c.Align.ClockFeed] {
		return fmt.Errorf("align.clock_feed %q does not match any feed", c.Align.ClockFeed)
	}
	return nil
}
