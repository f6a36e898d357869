package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Strategy != "direct" {
		t.Errorf("default strategy = %q, want direct", cfg.Strategy)
	}
	if cfg.Retries != 3 {
		t.Errorf("default retries = %d, want 3", cfg.Retries)
	}
	if cfg.Delay() != 2*time.Second {
		t.Errorf("default delay = %s, want 2s", cfg.Delay())
	}
	if len(cfg.Proxies) != 0 {
		t.Errorf("default proxies = %v, want none", cfg.Proxies)
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid strategy", func(c *Config) { c.Strategy = "magic" }, true},
		{"valid authenticated", func(c *Config) { c.Strategy = "Authenticated" }, false},
		{"auth alias", func(c *Config) { c.Strategy = "auth" }, false},
		{"zero retries", func(c *Config) { c.Retries = 0 }, true},
		{"negative delay", func(c *Config) { c.RetryDelay = -1 }, true},
		{"zero delay", func(c *Config) { c.RetryDelay = 0 }, false},
		{"zero connect timeout", func(c *Config) { c.TimeoutConnect = 0 }, true},
		{"valid socks proxy", func(c *Config) { c.Proxies = []string{"socks5://127.0.0.1:1080"} }, false},
		{"invalid proxy", func(c *Config) { c.Proxies = []string{"127.0.0.1:1080"} }, true},
		{"http endpoint", func(c *Config) { c.Endpoints.Resolve = "http://vavoo.to/x" }, true},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	content := `
proxies = ["socks5://10.0.0.1:1080", "http://10.0.0.2:3128"]
strategy = "authenticated"
retries = 5
retry_delay = 0.5
timeout_read = 10.0
history = false

[headers]
accept-language = "de-DE"

[endpoints]
resolve = "https://mirror.example/mediahubmx-resolve.json"
`
	dir := filepath.Join(tmpDir, "vavoo")
	os.MkdirAll(dir, 0755)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Proxies) != 2 || cfg.Proxies[0] != "socks5://10.0.0.1:1080" {
		t.Errorf("proxies = %v", cfg.Proxies)
	}
	if cfg.Strategy != "authenticated" {
		t.Errorf("strategy = %q, want authenticated", cfg.Strategy)
	}
	if cfg.Retries != 5 {
		t.Errorf("retries = %d, want 5", cfg.Retries)
	}
	if cfg.Delay() != 500*time.Millisecond {
		t.Errorf("delay = %s, want 500ms", cfg.Delay())
	}
	if got := cfg.Timeouts(); got.Read != 10*time.Second || got.Total != 60*time.Second {
		t.Errorf("timeouts = %+v", got)
	}
	if cfg.Headers["accept-language"] != "de-DE" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if cfg.Endpoints.Resolve != "https://mirror.example/mediahubmx-resolve.json" {
		t.Errorf("resolve endpoint = %q", cfg.Endpoints.Resolve)
	}
	if cfg.Endpoints.Ping != Default().Endpoints.Ping {
		t.Errorf("unset endpoints should keep defaults, got ping = %q", cfg.Endpoints.Ping)
	}
	if cfg.History {
		t.Error("history should be false")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, "vavoo")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`retries = 0`), 0644)

	if _, err := Load(); err == nil {
		t.Error("Load() should reject retries = 0")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Strategy != "direct" {
		t.Errorf("missing file should return defaults, got strategy = %q", cfg.Strategy)
	}
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	path, err := HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error: %v", err)
	}
	if path != "/tmp/data/vavoo/history.db" {
		t.Errorf("got %q, want /tmp/data/vavoo/history.db", path)
	}
}
