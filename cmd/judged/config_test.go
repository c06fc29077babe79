package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "no-such-file.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Deterministic.Choices) != 0 {
		t.Errorf("expected no choices, got %v", cfg.Deterministic.Choices)
	}
	if cfg.MonteCarlo.Number != 0 || cfg.MonteCarlo.Tolerance != 0 {
		t.Errorf("expected zero-value montecarlo settings, got %+v", cfg.MonteCarlo)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judged.yaml")
	src := `
deterministic:
  choices:
    coin: heads
montecarlo:
  number: 5000
  tolerance: 0.01
extensions:
  sql:
    dsn: "postgres://localhost/db"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got := cfg.Deterministic.Choices["coin"]; got != "heads" {
		t.Errorf("deterministic.choices[coin] = %q, want heads", got)
	}
	if cfg.MonteCarlo.Number != 5000 {
		t.Errorf("montecarlo.number = %d, want 5000", cfg.MonteCarlo.Number)
	}
	if cfg.MonteCarlo.Tolerance != 0.01 {
		t.Errorf("montecarlo.tolerance = %v, want 0.01", cfg.MonteCarlo.Tolerance)
	}
	if got := cfg.Extensions["sql"]["dsn"]; got != "postgres://localhost/db" {
		t.Errorf("extensions[sql][dsn] = %q, want postgres://localhost/db", got)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judged.yaml")
	if err := os.WriteFile(path, []byte("deterministic: [this is not a map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("expected an error parsing malformed YAML, got nil")
	}
}
