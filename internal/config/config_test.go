package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.RedirectDelaySeconds != 3 {
		t.Errorf("unexpected redirect delay: %d", cfg.RedirectDelaySeconds)
	}
	if cfg.Investigation.Priority != "high" {
		t.Errorf("unexpected priority: %s", cfg.Investigation.Priority)
	}

	// Defaults are written to disk
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data, _ := json.Marshal(map[string]any{
		"log_level":              "debug",
		"redirect_delay_seconds": 7,
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.RedirectDelaySeconds != 7 {
		t.Errorf("unexpected redirect delay: %d", cfg.RedirectDelaySeconds)
	}
	// Unset fields keep their defaults
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url: %s", cfg.API.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("TIGERWATCH_API_URL", "http://backend:9000")
	t.Setenv("TIGERWATCH_STREAM_URL", "ws://backend:9000/ws/agents")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://backend:9000" {
		t.Errorf("env override missed: %s", cfg.API.BaseURL)
	}
	if cfg.API.StreamURL != "ws://backend:9000/ws/agents" {
		t.Errorf("env override missed: %s", cfg.API.StreamURL)
	}
	if cfg.Telegram.Token != "tok-123" {
		t.Errorf("env override missed: %s", cfg.Telegram.Token)
	}
}
