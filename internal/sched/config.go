package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config holds the options of a simulation run that are not part of the
// workload itself.
type Config struct {
	LogLevel   string `yaml:"log_level"`   // info (by default)
	CSVEvents  string `yaml:"csv_events"`  // empty = no CSV event log
	Plot       string `yaml:"plot"`        // gnuplot script path, empty = derived from the input name
	Render     bool   `yaml:"render"`      // run gnuplot on the script
	MergeTrace bool   `yaml:"merge_trace"` // print consecutive grants as one
}

// DefaultConfig is used when no options file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
	}
}

// LoadConfig reads YAML and overrides defaults; empty path = defaults only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills values left empty by a partial file.
func (c *Config) Normalize() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
