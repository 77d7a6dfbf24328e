// Package config provides configuration loading for krogerd.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. The Kroger API credentials (KROGER_CLIENT_ID,
// KROGER_CLIENT_SECRET) are required; everything else has defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Default Kroger API endpoints. The paths are owned by Kroger; the base URL
// is overridable for tests and for the certification environment.
const (
	DefaultBaseURL  = "https://api.kroger.com/v1"
	DefaultTokenURL = "https://api.kroger.com/v1/connect/oauth2/token"
	DefaultScope    = "product.compact"
)

// Config holds the complete krogerd configuration.
type Config struct {
	Kroger    KrogerConfig    `koanf:"kroger"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// KrogerConfig holds credentials and endpoints for the Kroger API.
type KrogerConfig struct {
	ClientID     Secret   `koanf:"client_id"`
	ClientSecret Secret   `koanf:"client_secret"`
	BaseURL      string   `koanf:"base_url"`
	TokenURL     string   `koanf:"token_url"`
	Scopes       []string `koanf:"scopes"`
	Timeout      Duration `koanf:"timeout"`

	// Outbound request budget for the API client. Applies to this process
	// only; Kroger enforces its own quotas upstream.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// ServerConfig holds MCP server identity and the optional admin endpoint.
type ServerConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`

	// Admin endpoint serving /health and /metrics. Off by default: the
	// primary transport is stdio and most deployments need nothing else.
	AdminEnabled bool   `koanf:"admin_enabled"`
	AdminHost    string `koanf:"admin_host"`
	AdminPort    int    `koanf:"admin_port"`
}

// LoggingConfig holds logger construction settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Endpoint        string   `koanf:"endpoint"`
	ServiceName     string   `koanf:"service_name"`
	ServiceVersion  string   `koanf:"service_version"`
	Insecure        bool     `koanf:"insecure"`
	MetricsInterval Duration `koanf:"metrics_interval"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// applyDefaults sets default values for fields left unset by file and env.
func applyDefaults(cfg *Config) {
	if cfg.Kroger.BaseURL == "" {
		cfg.Kroger.BaseURL = DefaultBaseURL
	}
	if cfg.Kroger.TokenURL == "" {
		cfg.Kroger.TokenURL = DefaultTokenURL
	}
	if len(cfg.Kroger.Scopes) == 0 {
		cfg.Kroger.Scopes = []string{DefaultScope}
	}
	if cfg.Kroger.Timeout == 0 {
		cfg.Kroger.Timeout = Duration(30 * time.Second)
	}
	if cfg.Kroger.RateLimit == 0 {
		cfg.Kroger.RateLimit = 10
	}
	if cfg.Kroger.RateBurst == 0 {
		cfg.Kroger.RateBurst = 5
	}

	if cfg.Server.Name == "" {
		cfg.Server.Name = "krogerd"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "0.1.0"
	}
	if cfg.Server.AdminHost == "" {
		cfg.Server.AdminHost = "localhost"
	}
	if cfg.Server.AdminPort == 0 {
		cfg.Server.AdminPort = 9185
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "krogerd"
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = cfg.Server.Version
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = Duration(15 * time.Second)
	}
	if cfg.Telemetry.ShutdownTimeout == 0 {
		cfg.Telemetry.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate checks the configuration. Missing credentials are reported with
// the environment variable names so the startup error is actionable.
func (c *Config) Validate() error {
	var missing []string
	if !c.Kroger.ClientID.IsSet() {
		missing = append(missing, "KROGER_CLIENT_ID")
	}
	if !c.Kroger.ClientSecret.IsSet() {
		missing = append(missing, "KROGER_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}

	if err := validateHTTPURL(c.Kroger.BaseURL); err != nil {
		return fmt.Errorf("kroger.base_url: %w", err)
	}
	if err := validateHTTPURL(c.Kroger.TokenURL); err != nil {
		return fmt.Errorf("kroger.token_url: %w", err)
	}
	if c.Kroger.Timeout.Duration() <= 0 {
		return errors.New("kroger.timeout must be positive")
	}
	if c.Kroger.RateLimit <= 0 {
		return errors.New("kroger.rate_limit must be positive")
	}
	if c.Kroger.RateBurst < 1 {
		return errors.New("kroger.rate_burst must be at least 1")
	}

	if c.Server.AdminEnabled {
		if c.Server.AdminPort < 1 || c.Server.AdminPort > 65535 {
			return fmt.Errorf("invalid server.admin_port: %d (must be 1-65535)", c.Server.AdminPort)
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}
