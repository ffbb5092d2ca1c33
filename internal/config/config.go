package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type Logging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Carrier is one simulated pricing source.
type Carrier struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Factor   float64 `yaml:"factor"`
	Enabled  bool    `yaml:"enabled"`
}

// Sources configures the quote source fleet.
type Sources struct {
	// Seed pins the injected randomness; 0 means seed from the clock.
	Seed     int64     `yaml:"seed"`
	Carriers []Carrier `yaml:"carriers"`
}

// Rest configures the generic REST provider integration. Disabled by
// default: real provider endpoints are not wired yet.
type Rest struct {
	Enabled               bool   `yaml:"enabled"`
	Name                  string `yaml:"name"`
	Category              string `yaml:"category"`
	Endpoint              string `yaml:"endpoint"`
	APIKey                string `yaml:"api_key"`
	MaxRequestsPerMinute  int    `yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `yaml:"min_request_interval_sec"`
	Burst                 int    `yaml:"burst"`
	CacheTTLSeconds       int    `yaml:"cache_ttl_sec"`
	CacheMaxRoutes        int    `yaml:"cache_max_routes"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Sources Sources `yaml:"sources"`
	Rest    Rest    `yaml:"rest"`
}

func Default() Config {
	return Config{
		Server:  Server{Port: "8080", RequestTimeoutSec: 10},
		Logging: Logging{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 14},
		Sources: Sources{
			Carriers: []Carrier{
				{Name: "Air China", Category: "airline", Factor: 0.95, Enabled: true},
				{Name: "China Eastern", Category: "airline", Factor: 0.92, Enabled: true},
				{Name: "China Southern", Category: "airline", Factor: 0.90, Enabled: true},
				{Name: "Cathay Pacific", Category: "airline", Factor: 1.05, Enabled: true},
				{Name: "FreightHub", Category: "forwarder", Factor: 0.88, Enabled: true},
				{Name: "Flexport", Category: "forwarder", Factor: 0.93, Enabled: true},
				{Name: "Forwarder.net", Category: "forwarder", Factor: 0.87, Enabled: true},
				{Name: "Freightos Marketplace", Category: "marketplace", Factor: 0.91, Enabled: true},
				{Name: "World Freight Rates", Category: "marketplace", Factor: 0.89, Enabled: true},
			},
		},
		Rest: Rest{
			Name:            "Partner API",
			Category:        "forwarder",
			Burst:           1,
			CacheTTLSeconds: 60,
			CacheMaxRoutes:  1000,
		},
	}
}

// Load reads YAML config from path. If path is empty or the file does
// not exist, defaults are returned. Environment variables override
// select fields afterwards.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yml"); err == nil {
			path = "config.yml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if x, ok := envInt64("SOURCE_SEED"); ok {
		cfg.Sources.Seed = x
	}
	if v, ok := envBool("REST_ENABLED"); ok {
		cfg.Rest.Enabled = v
	}
	if v := os.Getenv("REST_ENDPOINT"); v != "" {
		cfg.Rest.Endpoint = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.Rest.APIKey = v
	}
	if x, ok := envInt("REST_MAX_RPM"); ok && x >= 0 {
		cfg.Rest.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("REST_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Rest.MinRequestIntervalSec = x
	}
	if x, ok := envInt("REST_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Rest.CacheTTLSeconds = x
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return x, true
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return x, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
