package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load loads configuration from the default file location and environment.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (KROGER_CLIENT_ID, SERVER_ADMIN_PORT, ...)
//  2. YAML config file (~/.config/krogerd/config.yaml by default)
//  3. Hardcoded defaults
//
// The config file, if present, must be owner-readable only (0600 or 0400)
// because it may hold the client secret. Files larger than 1MB are rejected.
//
// Environment variables map to config keys by lowercasing and splitting on
// the first underscore:
//
//	KROGER_CLIENT_ID    -> kroger.client_id
//	SERVER_ADMIN_PORT   -> server.admin_port
//	TELEMETRY_ENDPOINT  -> telemetry.endpoint
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	explicit := configPath != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "krogerd", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate through the descriptor to avoid a TOCTOU
		// race between stat and read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	// Environment variables override the file. Only the config sections are
	// considered so unrelated process environment does not leak in.
	if err := k.Load(env.Provider("", ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envToKey maps an environment variable name to a config key.
// The section is everything before the first underscore; the remainder is
// the field name with its underscores intact:
//
//	KROGER_CLIENT_ID -> kroger.client_id
//	LOGGING_LEVEL    -> logging.level
//
// Variables outside the known sections map to an empty key and are dropped.
func envToKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 {
		return ""
	}
	switch parts[0] {
	case "kroger", "server", "logging", "telemetry":
		return parts[0] + "." + parts[1]
	}
	return ""
}

// validateConfigFileProperties checks permissions and size of an existing
// config file using FileInfo from an already-opened descriptor.
func validateConfigFileProperties(info os.FileInfo) error {
	// The file may hold the client secret, so it must not be group or world
	// readable. Skip on Windows (different permission model).
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
