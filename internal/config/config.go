package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and engine configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SessionConfig is the canonical surface for the live-clock timing
// knobs. AbandonAfter must not exceed MaxDuration.
type SessionConfig struct {
	Tick         time.Duration `yaml:"tick"`
	PersistEvery int           `yaml:"persist_every"`
	MaxDuration  time.Duration `yaml:"max_duration"`
	AbandonAfter time.Duration `yaml:"abandon_after"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "feltline.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			Tick:         time.Second,
			PersistEvery: 10,
			MaxDuration:  24 * time.Hour,
			AbandonAfter: 12 * time.Hour,
		},
	}

	if path := os.Getenv("FELTLINE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("FELTLINE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("FELTLINE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FELTLINE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("FELTLINE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FELTLINE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if maxStr := os.Getenv("FELTLINE_SESSION_MAX_DURATION"); maxStr != "" {
		maxDur, err := time.ParseDuration(maxStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FELTLINE_SESSION_MAX_DURATION: %w", err)
		}
		cfg.Session.MaxDuration = maxDur
	}
	if abandonStr := os.Getenv("FELTLINE_SESSION_ABANDON_AFTER"); abandonStr != "" {
		abandon, err := time.ParseDuration(abandonStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FELTLINE_SESSION_ABANDON_AFTER: %w", err)
		}
		cfg.Session.AbandonAfter = abandon
	}

	if err := cfg.Session.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// UnmarshalYAML parses duration fields from strings like "12h". Fields
// absent from the document keep their current values.
func (c *SessionConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Tick         string `yaml:"tick"`
		PersistEvery *int   `yaml:"persist_every"`
		MaxDuration  string `yaml:"max_duration"`
		AbandonAfter string `yaml:"abandon_after"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Tick != "" {
		tick, err := time.ParseDuration(raw.Tick)
		if err != nil {
			return fmt.Errorf("invalid session tick: %w", err)
		}
		c.Tick = tick
	}
	if raw.PersistEvery != nil {
		c.PersistEvery = *raw.PersistEvery
	}
	if raw.MaxDuration != "" {
		maxDur, err := time.ParseDuration(raw.MaxDuration)
		if err != nil {
			return fmt.Errorf("invalid session max_duration: %w", err)
		}
		c.MaxDuration = maxDur
	}
	if raw.AbandonAfter != "" {
		abandon, err := time.ParseDuration(raw.AbandonAfter)
		if err != nil {
			return fmt.Errorf("invalid session abandon_after: %w", err)
		}
		c.AbandonAfter = abandon
	}
	return nil
}

func (c SessionConfig) validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("session tick must be positive, got %s", c.Tick)
	}
	if c.PersistEvery < 1 {
		return fmt.Errorf("session persist_every must be at least 1, got %d", c.PersistEvery)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("session max_duration must be positive, got %s", c.MaxDuration)
	}
	if c.AbandonAfter <= 0 {
		return fmt.Errorf("session abandon_after must be positive, got %s", c.AbandonAfter)
	}
	if c.AbandonAfter > c.MaxDuration {
		return fmt.Errorf("session abandon_after (%s) must not exceed max_duration (%s)", c.AbandonAfter, c.MaxDuration)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
