// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/seawatch/config.yaml",
	"/etc/seawatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:             "http://localhost:8000/api",
			Timeout:         8 * time.Second,
			LoginRetryDelay: 1500 * time.Millisecond,
			RateLimit:       5,
			RateBurst:       10,
			BreakerTimeout:  30 * time.Second,
		},
		Live: LiveConfig{
			Interval:           10 * time.Second,
			ZoneFloor:          3,
			NoiseMeters:        10,
			TransitionDuration: 2 * time.Second,
			RouteHorizons:      []time.Duration{15 * time.Minute, 30 * time.Minute, 60 * time.Minute},
			ExposureCellKm:     50,
		},
		Alerts: AlertsConfig{
			Debounce:        500 * time.Millisecond,
			DefaultPageSize: 10,
			NoticeLimit:     20,
		},
		Store: StoreConfig{
			Path: "/data/seawatch",
		},
		Server: ServerConfig{
			Port:    3857,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file,
// and environment variables, in that order of increasing priority.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// BACKEND_URL -> backend.url, LIVE_POLL_INTERVAL -> live.interval
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys that accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"live.route_horizons",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"backend_url":               "backend.url",
	"backend_timeout":           "backend.timeout",
	"backend_login_retry_delay": "backend.login_retry_delay",
	"backend_rate_limit":        "backend.rate_limit",
	"backend_rate_burst":        "backend.rate_burst",
	"backend_breaker_timeout":   "backend.breaker_timeout",

	"live_poll_interval":       "live.interval",
	"live_zone_floor":          "live.zone_floor",
	"live_noise_meters":        "live.noise_meters",
	"live_transition_duration": "live.transition_duration",
	"live_route_horizons":      "live.route_horizons",
	"live_exposure_cell_km":    "live.exposure_cell_km",

	"alerts_debounce":          "alerts.debounce",
	"alerts_default_page_size": "alerts.default_page_size",
	"alerts_notice_limit":      "alerts.notice_limit",

	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	"token_secret":        "security.token_secret",
	"authz_policy_path":   "security.policy_path",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for reloading and swapping configuration safely.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
