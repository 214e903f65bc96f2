package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"SantaClicker/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Schedule.TickCron != "@every 1s" {
		t.Errorf("unexpected tick cron %q", cfg.Schedule.TickCron)
	}
	if cfg.Tick.Interval != time.Second {
		t.Errorf("expected 1s interval, got %s", cfg.Tick.Interval)
	}
	if len(cfg.Clickers) != 3 {
		t.Errorf("expected 3 default clickers, got %d", len(cfg.Clickers))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9000"
tick:
  interval: 500ms
  offline_cap: 8h
catalog:
  path: "custom.yaml"
clickers:
  - { name: "Jar", currency: "cookie", per_click: 2 }
`)
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("TICK_CRON", "*/5 * * * * *")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":7000" {
		t.Errorf("env should override file, got %q", cfg.HTTP.Addr)
	}
	if cfg.Schedule.TickCron != "*/5 * * * * *" {
		t.Errorf("unexpected tick cron %q", cfg.Schedule.TickCron)
	}
	if cfg.Tick.Interval != 500*time.Millisecond || cfg.Tick.OfflineCap != 8*time.Hour {
		t.Errorf("unexpected tick section: %+v", cfg.Tick)
	}
	if cfg.Catalog.Path != "custom.yaml" {
		t.Errorf("unexpected catalog path %q", cfg.Catalog.Path)
	}

	sources, err := cfg.Sources()
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0].Currency != model.Cookie || sources[0].BasePerClick != 2 {
		t.Errorf("unexpected sources: %+v", sources)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative interval", func(c *Config) { c.Tick.Interval = -time.Second }},
		{"negative offline cap", func(c *Config) { c.Tick.OfflineCap = -time.Second }},
		{"unknown clicker currency", func(c *Config) { c.Clickers[0].Currency = "Marzipan" }},
		{"unnamed clicker", func(c *Config) { c.Clickers[0].Name = "" }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "http: [")); err == nil {
		t.Error("expected parse error")
	}
}
