package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the draftd service configuration file.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Draft struct {
		NumWorkers int  `yaml:"num_workers"`
		EmitTicks  bool `yaml:"emit_ticks"`
	} `yaml:"draft"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Persistence struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"persistence"`

	PlayerPool struct {
		// File is a JSON asset fallback used when persistence is disabled.
		File string `yaml:"file"`
	} `yaml:"player_pool"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Draft.NumWorkers = 10
	cfg.Draft.EmitTicks = true
	cfg.PlayerPool.File = "go/internal/assets/players.json"
	return cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
