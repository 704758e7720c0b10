package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_DefaultGolden(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "default_config", data)
}

func TestCheckToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "sentinel", token: SentinelToken, want: ErrNotConfigured},
		{name: "sentinel with spaces", token: "  " + SentinelToken + " ", want: ErrNotConfigured},
		{name: "empty", token: "", want: ErrNotConfigured},
		{name: "blank", token: "   ", want: ErrNotConfigured},
		{name: "real token", token: "cs_live_abc123", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Token = tt.token
			if tt.want == nil {
				assert.NoError(t, cfg.CheckToken())
				assert.True(t, cfg.Configured())
				return
			}
			assert.ErrorIs(t, cfg.CheckToken(), tt.want)
			assert.False(t, cfg.Configured())
		})
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
token: abc
base_url: https://store.example.com/v4
poll_interval: 10s
executor:
  mode: webrcon
  webrcon_url: ws://127.0.0.1:28016
  webrcon_password: secret
`))
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "https://store.example.com/v4/", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, ModeWebRCON, cfg.Executor.Mode)
	assert.Equal(t, "ws://127.0.0.1:28016", cfg.Executor.WebRCONURL)
	assert.Equal(t, "secret", cfg.Executor.WebRCONPassword)
	assert.Equal(t, DefaultQueueSize, cfg.Executor.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("token: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad scheme", mutate: func(c *Config) { c.BaseURL = "ftp://store/" }},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }},
		{name: "unknown mode", mutate: func(c *Config) { c.Executor.Mode = "telnet" }},
		{name: "shell without shell", mutate: func(c *Config) { c.Executor.Shell = "" }},
		{name: "webrcon without url", mutate: func(c *Config) { c.Executor.Mode = ModeWebRCON }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_SearchOrder(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.yaml")
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte("token: from-second\n"), 0o600))

	cfg, path, err := Load("", missing, second)
	require.NoError(t, err)
	assert.Equal(t, second, path)
	assert.Equal(t, "from-second", cfg.Token)
}

func TestLoad_NoneFound(t *testing.T) {
	_, path, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Empty(t, path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.ErrorIs(t, cfg.CheckToken(), ErrNotConfigured)
}
