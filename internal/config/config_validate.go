// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validPageSizes = map[int]bool{10: true, 25: true, 50: true}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateLive(); err != nil {
		return err
	}
	if err := c.validateAlerts(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateHTTPURL(c.Backend.URL, "BACKEND_URL"); err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.LoginRetryDelay < 0 {
		return fmt.Errorf("BACKEND_LOGIN_RETRY_DELAY must not be negative")
	}
	if c.Backend.RateLimit <= 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT must be positive")
	}
	if c.Backend.RateBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateLive() error {
	if c.Live.Interval < 500*time.Millisecond {
		return fmt.Errorf("LIVE_POLL_INTERVAL must be at least 500ms, got %s", c.Live.Interval)
	}
	if c.Live.ZoneFloor < 0 {
		return fmt.Errorf("LIVE_ZONE_FLOOR must not be negative")
	}
	if c.Live.NoiseMeters < 0 {
		return fmt.Errorf("LIVE_NOISE_METERS must not be negative")
	}
	for _, h := range c.Live.RouteHorizons {
		if h <= 0 {
			return fmt.Errorf("LIVE_ROUTE_HORIZONS entries must be positive, got %s", h)
		}
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if c.Alerts.Debounce < 0 {
		return fmt.Errorf("ALERTS_DEBOUNCE must not be negative")
	}
	if !validPageSizes[c.Alerts.DefaultPageSize] {
		return fmt.Errorf("ALERTS_DEFAULT_PAGE_SIZE must be one of 10, 25, 50, got %d", c.Alerts.DefaultPageSize)
	}
	if c.Alerts.NoticeLimit < 1 {
		return fmt.Errorf("ALERTS_NOTICE_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks scheme and host. A path prefix is allowed because
// the backend is commonly mounted under /api; query strings are not.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
