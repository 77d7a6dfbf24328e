package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingConfigFile(t *testing.T) {
	old := configPath
	configPath = "/nonexistent/krogerd.yaml"
	defer func() { configPath = old }()

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestRun_MissingCredentials(t *testing.T) {
	t.Setenv("KROGER_CLIENT_ID", "")
	t.Setenv("KROGER_CLIENT_SECRET", "")
	t.Setenv("HOME", t.TempDir()) // no default config file either

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required credentials")
}
