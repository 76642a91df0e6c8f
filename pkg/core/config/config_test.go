package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Edgar.TTL() != 24*time.Hour {
		t.Errorf("expected 24h default TTL, got %v", cfg.Edgar.TTL())
	}
	if cfg.Narrative.Enabled {
		t.Error("expected narrative enrichment off by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.yaml")
	content := `
server:
  addr: ":9090"
edgar:
  cache_dir: /tmp/filings
  cache_ttl: 1h
narrative:
  enabled: true
  model: gemini-2.0-flash
  risk_agent: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if cfg.Edgar.CacheDir != "/tmp/filings" {
		t.Errorf("unexpected cache dir: %q", cfg.Edgar.CacheDir)
	}
	if cfg.Edgar.TTL() != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.Edgar.TTL())
	}
	if !cfg.Narrative.Enabled || !cfg.Narrative.RiskAgent {
		t.Errorf("expected narrative flags set: %+v", cfg.Narrative)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestEdgarConfig_TTLFallback(t *testing.T) {
	bad := EdgarConfig{CacheTTL: "not-a-duration"}
	if bad.TTL() != 24*time.Hour {
		t.Errorf("expected fallback TTL, got %v", bad.TTL())
	}
}
