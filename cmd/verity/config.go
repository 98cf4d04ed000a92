package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Transport
	BotToken string `json:"bot_token"`
	HTTPAddr string `json:"http_addr"`

	// Logging
	LogPath  string `json:"log_path"`
	LogLevel string `json:"log_level"`

	// Optional integrations
	OpenAIAPIKey string `json:"openai_api_key"`

	// Core tuning
	HistoryLimit   int    `json:"history_limit"`
	FeedTTLMinutes int    `json:"feed_ttl_minutes"`
	MaxFeedSize    int    `json:"max_feed_size"`
	MaxCuratedSize int    `json:"max_curated_size"`
	SourcesPath    string `json:"sources_path"`

	// Feed provider URLs (RSS); empty lists fall back to built-in articles
	HeadlineFeeds []string `json:"headline_feeds"`
	CategoryFeeds []string `json:"category_feeds"`
	LocalFeeds    []string `json:"local_feeds"`
}

// DefaultConfig returns a config that works with no files present
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:       ":8090",
		LogPath:        "data/verity.log",
		LogLevel:       "info",
		HistoryLimit:   10,
		FeedTTLMinutes: 5,
		MaxFeedSize:    50,
		MaxCuratedSize: 20,
		SourcesPath:    "sources.yml",
	}
}

// LoadConfig reads configuration from an optional JSON file and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// Load .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, NewError(ErrorTypeInternal, "CONFIG_001", "failed to parse config file", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, NewError(ErrorTypeInternal, "CONFIG_001", "failed to read config file", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VERITY_BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("VERITY_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("VERITY_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("VERITY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("VERITY_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("VERITY_FEED_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FeedTTLMinutes = n
		}
	}
	if v := os.Getenv("VERITY_SOURCES_PATH"); v != "" {
		cfg.SourcesPath = v
	}
}
