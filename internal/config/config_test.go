package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - name: spx
    path: data/spx.csv
    primary: true
align:
  fill_gaps: true
  back: 500
`)
	t.Setenv("CSV_OUT", "out/override.csv")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Align.FillGaps || cfg.Align.Back != 500 {
		t.Errorf("align section not loaded: %+v", cfg.Align)
	}
	if cfg.Output.CSVPath != "out/override.csv" {
		t.Errorf("env override not applied: %q", cfg.Output.CSVPath)
	}
	if cfg.Output.TimeFormat != "%Y-%m-%d %H:%M:%S" {
		t.Errorf("default time format missing: %q", cfg.Output.TimeFormat)
	}
	if cfg.Schedule.SnapshotCron == "" {
		t.Error("default snapshot cron missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no feeds", ``},
		{"missing path", "feeds:\n  - name: spx\n"},
		{"duplicate names", "feeds:\n  - name: spx\n    path: a.csv\n  - name: spx\n    path: b.csv\n"},
		{"two primaries", "feeds:\n  - name: a\n    path: a.csv\n    primary: true\n  - name: b\n    path: b.csv\n    primary: true\n"},
		{"unknown clock feed", "feeds:\n  - name: a\n    path: a.csv\nalign:\n  clock_feed: b\n"},
		{"negative back", "feeds:\n  - name: a\n    path: a.csv\nalign:\n  back: -1\n"},
	}
	for _, tt := range tests {
		cfg, err := Load(writeConfig(t, tt.yaml))
		if err != nil {
			t.Fatalf("%s: load: %v", tt.name, err)
		}
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
