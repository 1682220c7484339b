package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: "9090"
auth:
  signing_key: "s3cret"
clock:
  interval: 10s
display:
  watch_class: kiosk
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("port: want 9090, got %q", cfg.HTTP.Port)
	}
	if cfg.Clock.Interval != 10*time.Second {
		t.Errorf("clock interval: want 10s, got %v", cfg.Clock.Interval)
	}
	if cfg.Clock.Tolerance != 2*time.Second {
		t.Errorf("clock tolerance default: want 2s, got %v", cfg.Clock.Tolerance)
	}
	if cfg.Display.WatchClass != "kiosk" {
		t.Errorf("watch class: got %q", cfg.Display.WatchClass)
	}
	if len(cfg.Display.Lockers) == 0 {
		t.Error("default lockers missing")
	}
	if cfg.Notify.QueueSize != 64 {
		t.Errorf("queue size default: want 64, got %d", cfg.Notify.QueueSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  signing_key: "from-file"
`)
	t.Setenv("TIMEGUARD_HTTP_PORT", "7070")
	t.Setenv("TIMEGUARD_AUTH_SIGNING_KEY", "from-env")
	t.Setenv("TIMEGUARD_LOG_GATE_TRACE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != "7070" {
		t.Errorf("port: want 7070, got %q", cfg.HTTP.Port)
	}
	if cfg.Auth.SigningKey != "from-env" {
		t.Errorf("signing key: want env value, got %q", cfg.Auth.SigningKey)
	}
	if !cfg.Log.GateTrace {
		t.Error("gate trace: want true from env")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func TestLoad_RequiresSigningKey(t *testing.T) {
	path := writeConfig(t, "http:\n  port: \"8080\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "signing key") {
		t.Fatalf("want signing key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log:     LogConfig{Level: "info"},
			HTTP:    HTTPConfig{Port: "8080"},
			DB:      DBConfig{Path: "x.db", RecorderQueue: 1},
			Auth:    AuthConfig{SigningKey: "k", TokenTTL: time.Hour},
			Notify:  NotifyConfig{QueueSize: 1},
			Clock:   ClockConfig{Interval: time.Second, Tolerance: time.Second},
			Display: DisplayConfig{Enabled: true, Interval: time.Second},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"port range", func(c *Config) { c.HTTP.Port = "70000" }},
		{"port text", func(c *Config) { c.HTTP.Port = "http" }},
		{"db path", func(c *Config) { c.DB.Path = "" }},
		{"recorder queue", func(c *Config) { c.DB.RecorderQueue = 0 }},
		{"token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"notify queue", func(c *Config) { c.Notify.QueueSize = -1 }},
		{"clock interval", func(c *Config) { c.Clock.Interval = 0 }},
		{"clock tolerance", func(c *Config) { c.Clock.Tolerance = 0 }},
		{"display interval", func(c *Config) { c.Display.Interval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestString_MasksSigningKey(t *testing.T) {
	c := &Config{Auth: AuthConfig{SigningKey: "top-secret"}}
	s := c.String()
	if strings.Contains(s, "top-secret") {
		t.Fatal("signing key leaked in String()")
	}
	if !strings.Contains(s, "<redacted>") {
		t.Fatalf("expected redacted marker, got:\n%s", s)
	}
}
