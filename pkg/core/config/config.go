// Package config loads service configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config drives the API server and the pipeline CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Edgar     EdgarConfig     `yaml:"edgar"`
	Narrative NarrativeConfig `yaml:"narrative"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type EdgarConfig struct {
	CacheDir string `yaml:"cache_dir"`
	CacheTTL string `yaml:"cache_ttl"` // Go duration string, e.g. "24h"
}

type NarrativeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	RiskAgent bool   `yaml:"risk_agent"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Edgar: EdgarConfig{
			CacheDir: ".cache/edgar/filings",
			CacheTTL: "24h",
		},
		Narrative: NarrativeConfig{
			Enabled: false,
			Model:   "gemini-2.0-flash-exp",
		},
	}
}

// Load reads YAML configuration from path. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// TTL parses the cache TTL, falling back to 24h on bad input.
func (c EdgarConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
