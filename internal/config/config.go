// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package config loads Seawatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Backend  BackendConfig  `koanf:"backend"`
	Live     LiveConfig     `koanf:"live"`
	Alerts   AlertsConfig   `koanf:"alerts"`
	Store    StoreConfig    `koanf:"store"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// BackendConfig describes the upstream maritime REST backend.
//
// Environment Variables:
//   - BACKEND_URL: base URL including any path prefix (e.g. https://api.example.com/api)
//   - BACKEND_TIMEOUT: per-request timeout, kept below the poll interval (default: 8s)
//   - BACKEND_LOGIN_RETRY_DELAY: delay before the single login retry (default: 1.5s)
//   - BACKEND_RATE_LIMIT: outbound requests per second on read paths (default: 5)
type BackendConfig struct {
	URL             string        `koanf:"url"`
	Timeout         time.Duration `koanf:"timeout"`
	LoginRetryDelay time.Duration `koanf:"login_retry_delay"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`

	// BreakerTimeout is how long an open circuit waits before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// LiveConfig controls the live vessel and risk zone feeds.
type LiveConfig struct {
	// Interval between sync ticks. Default: 10s
	Interval time.Duration `koanf:"interval"`

	// ZoneFloor is the minimum number of zones the map expects. Fewer zones
	// are reported as a shortfall. Default: 3
	ZoneFloor int `koanf:"zone_floor"`

	// NoiseMeters is the movement below which a vessel holds its rendered
	// position. Default: 10
	NoiseMeters float64 `koanf:"noise_meters"`

	TransitionDuration time.Duration   `koanf:"transition_duration"`
	RouteHorizons      []time.Duration `koanf:"route_horizons"`

	// ExposureCellKm sizes the spatial grid used for zone exposure.
	ExposureCellKm float64 `koanf:"exposure_cell_km"`
}

// AlertsConfig controls the alert query pipeline.
type AlertsConfig struct {
	Debounce        time.Duration `koanf:"debounce"`
	DefaultPageSize int           `koanf:"default_page_size"`
	NoticeLimit     int           `koanf:"notice_limit"`
}

// StoreConfig selects the local key-value store used for annotations and
// sessions.
type StoreConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig covers token verification, CORS, and inbound rate limits.
type SecurityConfig struct {
	// TokenSecret verifies upstream access tokens when set. When empty the
	// role claim is read without signature verification and the upstream
	// backend remains the authority on every request.
	TokenSecret string `koanf:"token_secret"`

	// PolicyPath is an optional Casbin CSV replacing the built-in role
	// matrix.
	PolicyPath string `koanf:"policy_path"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
