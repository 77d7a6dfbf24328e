package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Kroger.ClientID = "abc"
	cfg.Kroger.ClientSecret = "xyz"
	applyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name: "missing client id",
			mutate: func(c *Config) {
				c.Kroger.ClientID = ""
			},
			wantErr: "KROGER_CLIENT_ID",
		},
		{
			name: "missing client secret",
			mutate: func(c *Config) {
				c.Kroger.ClientSecret = ""
			},
			wantErr: "KROGER_CLIENT_SECRET",
		},
		{
			name: "missing both credentials",
			mutate: func(c *Config) {
				c.Kroger.ClientID = ""
				c.Kroger.ClientSecret = ""
			},
			wantErr: "KROGER_CLIENT_ID, KROGER_CLIENT_SECRET",
		},
		{
			name: "bad base url scheme",
			mutate: func(c *Config) {
				c.Kroger.BaseURL = "ftp://api.kroger.com/v1"
			},
			wantErr: "kroger.base_url",
		},
		{
			name: "bad token url",
			mutate: func(c *Config) {
				c.Kroger.TokenURL = "://bad"
			},
			wantErr: "kroger.token_url",
		},
		{
			name: "zero timeout",
			mutate: func(c *Config) {
				c.Kroger.Timeout = 0
			},
			wantErr: "timeout must be positive",
		},
		{
			name: "admin port out of range",
			mutate: func(c *Config) {
				c.Server.AdminEnabled = true
				c.Server.AdminPort = 70000
			},
			wantErr: "admin_port",
		},
		{
			name: "bad logging format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, DefaultBaseURL, cfg.Kroger.BaseURL)
	assert.Equal(t, DefaultTokenURL, cfg.Kroger.TokenURL)
	assert.Equal(t, []string{DefaultScope}, cfg.Kroger.Scopes)
	assert.Equal(t, 30*time.Second, cfg.Kroger.Timeout.Duration())
	assert.Equal(t, "krogerd", cfg.Server.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.False(t, cfg.Server.AdminEnabled)
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret-value")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "super-secret-value", s.Value())
	assert.True(t, s.IsSet())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(out))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
	require.Error(t, d.UnmarshalText([]byte("-5s")))
}
