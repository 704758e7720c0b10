package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SentinelToken is written to fresh config files and means "not configured".
	SentinelToken = "Enter your API token"

	DefaultBaseURL        = "https://api.craftingstore.net/v4/"
	DefaultPollInterval   = 240 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultCommandTimeout = 60 * time.Second
	DefaultQueueSize      = 256
)

// Executor modes.
const (
	ModeShell   = "shell"
	ModeWebRCON = "webrcon"
	ModeDryRun  = "dry-run"
)

// ErrNotConfigured is returned when the API token is unset or still the sentinel.
var ErrNotConfigured = errors.New("API token is not configured")

// Config represents the agent configuration
type Config struct {
	Token          string         `yaml:"token"`
	BaseURL        string         `yaml:"base_url"`
	PollInterval   time.Duration  `yaml:"poll_interval"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	Executor       ExecutorConfig `yaml:"executor"`
	Log            LogConfig      `yaml:"log"`
}

type ExecutorConfig struct {
	Mode            string        `yaml:"mode"`
	Shell           string        `yaml:"shell"`
	CommandTimeout  time.Duration `yaml:"command_timeout"`
	QueueSize       int           `yaml:"queue_size"`
	WebRCONURL      string        `yaml:"webrcon_url,omitempty"`
	WebRCONPassword string        `yaml:"webrcon_password,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration written for a fresh install.
func Default() Config {
	return Config{
		Token:          SentinelToken,
		BaseURL:        DefaultBaseURL,
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		Executor: ExecutorConfig{
			Mode:           ModeShell,
			Shell:          "/bin/sh",
			CommandTimeout: DefaultCommandTimeout,
			QueueSize:      DefaultQueueSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Configured reports whether the token is set to something other than the sentinel.
func (c Config) Configured() bool {
	token := strings.TrimSpace(c.Token)
	return token != "" && token != SentinelToken
}

// CheckToken returns ErrNotConfigured when the agent must stay disabled.
func (c Config) CheckToken() error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http(s), got %q", c.BaseURL)
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be > 0")
	}
	switch c.Executor.Mode {
	case ModeShell:
		if strings.TrimSpace(c.Executor.Shell) == "" {
			return errors.New("executor.shell is required for shell mode")
		}
	case ModeWebRCON:
		if strings.TrimSpace(c.Executor.WebRCONURL) == "" {
			return errors.New("executor.webrcon_url is required for webrcon mode")
		}
	case ModeDryRun:
	default:
		return fmt.Errorf("unsupported executor mode %q", c.Executor.Mode)
	}
	return nil
}

// Parse decodes YAML on top of the defaults, so omitted keys keep their default value.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return cfg, nil
}

// Load returns the first config file from paths that exists, and its path.
// A file that exists but fails to parse is an error; missing files are skipped.
// When no file exists the returned path is empty and os.ErrNotExist is wrapped.
func Load(paths ...string) (Config, string, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, "", fmt.Errorf("%s: %w", path, err)
		}
		return cfg, path, nil
	}
	return Config{}, "", fmt.Errorf("no config file found: %w", os.ErrNotExist)
}

// Marshal renders cfg as YAML with two-space indentation.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. The file is written atomically and readable only by its owner
// since it will hold the API token.
func WriteDefault(path string) error {
	data, err := Marshal(Default())
	if err != nil {
		return fmt.Errorf("render default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// SearchPaths lists the config locations tried in order, explicit path first.
func SearchPaths(explicit string) []string {
	paths := []string{explicit, "/etc/cs-agent/config.yaml", "/etc/cs-agent/config.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cs-agent", "config.yaml"))
	}
	return paths
}
