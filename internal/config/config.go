package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir               string `json:"data_dir"`
	LogLevel              string `json:"log_level"`
	RedirectDelaySeconds  int    `json:"redirect_delay_seconds"`
	MaxConcurrentDelivery int    `json:"max_concurrent_delivery"`
	API                   struct {
		BaseURL   string `json:"base_url"`
		StreamURL string `json:"stream_url"`
	} `json:"api"`
	Investigation struct {
		Priority string `json:"priority"`
	} `json:"investigation"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:               filepath.Join(os.Getenv("HOME"), ".tigerwatch"),
		LogLevel:              "info",
		RedirectDelaySeconds:  3,
		MaxConcurrentDelivery: 2,
	}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.StreamURL = "ws://localhost:8000/ws/agents"
	cfg.Investigation.Priority = "high"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv("TIGERWATCH_API_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if streamURL := os.Getenv("TIGERWATCH_STREAM_URL"); streamURL != "" {
		cfg.API.StreamURL = streamURL
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
