// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"vavoo/internal/extract"
	"vavoo/internal/httputil"
)

// Config holds all application configuration.
type Config struct {
	Proxies        []string          `toml:"proxies"`
	Strategy       string            `toml:"strategy"`
	Retries        int               `toml:"retries"`
	RetryDelay     float64           `toml:"retry_delay"`
	TimeoutTotal   float64           `toml:"timeout_total"`
	TimeoutConnect float64           `toml:"timeout_connect"`
	TimeoutRead    float64           `toml:"timeout_read"`
	UserAgent      string            `toml:"user_agent"`
	Headers        map[string]string `toml:"headers"`
	Endpoints      Endpoints         `toml:"endpoints"`
	History        bool              `toml:"history"`
	Debug          bool              `toml:"debug"`
}

// Endpoints overrides the remote API URLs.
type Endpoints struct {
	Ping    string `toml:"ping"`
	Ping2   string `toml:"ping2"`
	Resolve string `toml:"resolve"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Strategy:       "direct",
		Retries:        3,
		RetryDelay:     2,
		TimeoutTotal:   60,
		TimeoutConnect: 30,
		TimeoutRead:    30,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Endpoints: Endpoints{
			Ping:    "https://www.vavoo.tv/api/app/ping",
			Ping2:   "https://www.vavoo.tv/api/box/ping2",
			Resolve: "https://vavoo.to/mediahubmx-resolve.json",
		},
		History: true,
		Debug:   false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vavoo"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vavoo"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if _, err := extract.ParseStrategy(c.Strategy); err != nil {
		return err
	}

	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay cannot be negative, got %g", c.RetryDelay)
	}

	for name, v := range map[string]float64{
		"timeout_total":   c.TimeoutTotal,
		"timeout_connect": c.TimeoutConnect,
		"timeout_read":    c.TimeoutRead,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, v)
		}
	}

	for _, p := range c.Proxies {
		if _, err := httputil.ParseProxyURL(p); err != nil {
			return fmt.Errorf("proxy %q: %w", p, err)
		}
	}

	for name, u := range map[string]string{
		"ping":    c.Endpoints.Ping,
		"ping2":   c.Endpoints.Ping2,
		"resolve": c.Endpoints.Resolve,
	} {
		if err := httputil.ValidateURL(u); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	return nil
}

// Timeouts converts the configured second values into request bounds.
func (c *Config) Timeouts() httputil.Timeouts {
	return httputil.Timeouts{
		Total:   seconds(c.TimeoutTotal),
		Connect: seconds(c.TimeoutConnect),
		Read:    seconds(c.TimeoutRead),
	}
}

// Delay returns the retry backoff unit.
func (c *Config) Delay() time.Duration {
	return seconds(c.RetryDelay)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// HistoryPath returns the path to the resolution history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "vavoo", "history.db"), nil
}
