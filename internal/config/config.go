package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timeguard/internal/logger"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TIMEGUARD_HTTP_PORT.
const EnvPrefix = "TIMEGUARD"

// Config holds all daemon configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Clock    ClockConfig    `mapstructure:"clock"`
	Timezone TimezoneConfig `mapstructure:"timezone"`
	Display  DisplayConfig  `mapstructure:"display"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// GateTrace enables gate diagnostics from startup; configureLogging toggles it later.
	GateTrace bool `mapstructure:"gate_trace"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
	// RecorderQueue bounds the decisions waiting to be written.
	RecorderQueue int `mapstructure:"recorder_queue"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type NotifyConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

type ClockConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Tolerance time.Duration `mapstructure:"tolerance"`
}

type TimezoneConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	LocaltimePath string `mapstructure:"localtime_path"`
	TimezonePath  string `mapstructure:"timezone_path"`
}

type DisplayConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Name is the X display, e.g. ":0". Empty uses $DISPLAY.
	Name       string        `mapstructure:"name"`
	WatchClass string        `mapstructure:"watch_class"`
	Interval   time.Duration `mapstructure:"interval"`
	Lockers    []string      `mapstructure:"lockers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("log.gate_trace", false)
	v.SetDefault("http.port", "8080")
	v.SetDefault("db.path", "timeguard.db")
	v.SetDefault("db.recorder_queue", 256)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("clock.interval", 5*time.Second)
	v.SetDefault("clock.tolerance", 2*time.Second)
	v.SetDefault("timezone.enabled", true)
	v.SetDefault("timezone.localtime_path", "/etc/localtime")
	v.SetDefault("timezone.timezone_path", "/etc/timezone")
	v.SetDefault("display.enabled", true)
	v.SetDefault("display.name", "")
	v.SetDefault("display.watch_class", "")
	v.SetDefault("display.interval", time.Second)
	v.SetDefault("display.lockers", []string{
		"gnome-screensaver-dialog",
		"kscreenlocker",
		"i3lock",
		"slock",
		"xscreensaver",
		"xsecurelock",
	})
}

// Load reads configuration from file (if given, else configs/config.yml when
// present), then applies TIMEGUARD_* environment overrides.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Log.Level {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel:
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	port, err := strconv.Atoi(c.HTTP.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %q", c.HTTP.Port)
	}

	if c.DB.Path == "" {
		return fmt.Errorf("db path cannot be empty")
	}
	if c.DB.RecorderQueue <= 0 {
		return fmt.Errorf("db recorder queue must be positive, got %d", c.DB.RecorderQueue)
	}

	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth signing key cannot be empty (set %s_AUTH_SIGNING_KEY)", EnvPrefix)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %v", c.Auth.TokenTTL)
	}

	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify queue size must be positive, got %d", c.Notify.QueueSize)
	}

	if c.Clock.Interval <= 0 {
		return fmt.Errorf("clock interval must be positive, got %v", c.Clock.Interval)
	}
	if c.Clock.Tolerance <= 0 {
		return fmt.Errorf("clock tolerance must be positive, got %v", c.Clock.Tolerance)
	}

	if c.Display.Enabled && c.Display.Interval <= 0 {
		return fmt.Errorf("display interval must be positive, got %v", c.Display.Interval)
	}
	return nil
}

// String returns a string representation of the config with secrets masked.
func (c *Config) String() string {
	key := "<unset>"
	if c.Auth.SigningKey != "" {
		key = "<redacted>"
	}
	return fmt.Sprintf(`Configuration:
  Log:
    Level: %s
    Gate Trace: %v
  HTTP:
    Port: %s
  DB:
    Path: %s
    Recorder Queue: %d
  Auth:
    Signing Key: %s
    Token TTL: %v
  Notify:
    Queue Size: %d
  Clock:
    Interval: %v
    Tolerance: %v
  Timezone:
    Enabled: %v
    Localtime: %s
    Timezone File: %s
  Display:
    Enabled: %v
    Name: %q
    Watch Class: %q
    Interval: %v
    Lockers: %s`,
		c.Log.Level, c.Log.GateTrace,
		c.HTTP.Port,
		c.DB.Path, c.DB.RecorderQueue,
		key, c.Auth.TokenTTL,
		c.Notify.QueueSize,
		c.Clock.Interval, c.Clock.Tolerance,
		c.Timezone.Enabled, c.Timezone.LocaltimePath, c.Timezone.TimezonePath,
		c.Display.Enabled, c.Display.Name, c.Display.WatchClass, c.Display.Interval,
		strings.Join(c.Display.Lockers, ", "),
	)
}
