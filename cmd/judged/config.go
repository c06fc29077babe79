package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is judged.yaml's shape (spec section 6's expansion: default
// world choices for Deterministic, Monte Carlo iteration caps, and a
// per-module `with k="v"` map). Extensions is parsed but no command
// applies it to @use.
type Config struct {
	Deterministic struct {
		Choices map[string]string `yaml:"choices"`
	} `yaml:"deterministic"`
	MonteCarlo struct {
		Number    int     `yaml:"number"`
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"montecarlo"`
	Extensions map[string]map[string]string `yaml:"extensions"`
}

// loadConfig reads path as YAML, returning a zero-value Config when
// path does not exist: a missing judged.yaml is the common case, not
// an error (spec section 6's configuration is optional).
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
