package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("logLevel: got %q", cfg.LogLevel)
	}
	if len(cfg.Levels) != 3 || cfg.StartLevel != "shoreditch" {
		t.Errorf("levels: got %v start %q", cfg.Levels, cfg.StartLevel)
	}
	if cfg.DB.Enabled {
		t.Errorf("db should be disabled by default")
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Interval != 30*time.Second {
		t.Errorf("metrics: got %+v", cfg.Metrics)
	}
}

func TestLoadAppConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
logLevel: debug
levels: [a, b]
startLevel: b
db:
  enabled: true
  sqlitePath: runs.db
`
	if err := os.WriteFile(filepath.Join(dir, "courier.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURIER_DB_HOST", "db.internal")
	t.Setenv("COURIER_METRICS_ENABLED", "true")
	t.Setenv("COURIER_METRICS_INTERVAL", "5s")

	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.StartLevel != "b" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !cfg.DB.Enabled || cfg.DB.SQLitePath != "runs.db" {
		t.Errorf("db: got %+v", cfg.DB)
	}
	if cfg.DB.Host != "db.internal" {
		t.Errorf("env override: got host %q", cfg.DB.Host)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Interval != 5*time.Second {
		t.Errorf("metrics env override: got %+v", cfg.Metrics)
	}
	if got := cfg.NextLevel("b"); got != "a" {
		t.Errorf("NextLevel(b): got %q, want a", got)
	}
	if got := cfg.NextLevel("zzz"); got != "a" {
		t.Errorf("NextLevel(unknown): got %q, want a", got)
	}
}

func TestLoadAppConfigRejectsUnknownStartLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "courier.yaml"), []byte("startLevel: nowhere\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(dir); err == nil {
		t.Errorf("expected error for unknown start level")
	}
}

func TestLoadAppConfigRejectsZeroMetricsInterval(t *testing.T) {
	dir := t.TempDir()
	content := "metrics:\n  enabled: true\n  interval: 0s\n"
	if err := os.WriteFile(filepath.Join(dir, "courier.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(dir); err == nil {
		t.Errorf("expected error for a zero metrics interval")
	}
}
