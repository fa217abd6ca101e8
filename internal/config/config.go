// Package config holds the deployment-static bootstrap configuration loaded
// from YAML at startup: pin assignments, listen address, file paths, broker.
// Runtime-mutable actor settings (action URLs, cool-downs) live in the
// snapshot managed by internal/store instead.
package config

import (
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Listen          string         `yaml:"listen"`           // control API listen address
	StaticDir       string         `yaml:"static_dir"`       // web panel directory, empty disables
	StatePath       string         `yaml:"state_path"`       // runtime config snapshot document
	HTTPTimeout     Duration       `yaml:"http_timeout"`     // outbound action call timeout
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // graceful stop timeout
	Database        DatabaseConfig `yaml:"database"`
	Ledger          LedgerConfig   `yaml:"ledger"`
	GPIO            GPIOConfig     `yaml:"gpio"`
	MQTT            MQTTConfig     `yaml:"mqtt"`
	Log             LogConfig      `yaml:"log"`
}

// DatabaseConfig contains event ledger database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig contains event ledger retention settings.
type LedgerConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
	RetentionDays   int      `yaml:"retention_days"`
}

// GPIOConfig contains pin assignments (BCM numbering). With Enabled false
// the daemon runs against null hardware, useful off the Pi.
type GPIOConfig struct {
	Enabled bool   `yaml:"enabled"`
	Chip    string `yaml:"chip"`

	Relay1In  int `yaml:"relay1_in"`
	Relay1LED int `yaml:"relay1_led"`
	Relay2In  int `yaml:"relay2_in"`
	Relay2LED int `yaml:"relay2_led"`
	BellWork  int `yaml:"bell_work"`
	BellLED   int `yaml:"bell_led"`
	RunLED    int `yaml:"run_led"`
	OnlineLED int `yaml:"online_led"`
}

// MQTTConfig contains the optional status publisher settings. An empty
// broker disables publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// GetLevel returns the configured level with default.
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// defaults returns the compiled-in configuration. Pin assignments match the
// original wiring of the door panel.
func defaults() Config {
	return Config{
		Listen:          ":8080",
		StatePath:       "dooropener.json",
		HTTPTimeout:     Duration(10 * time.Second),
		ShutdownTimeout: Duration(5 * time.Second),
		Database:        DatabaseConfig{Path: "./dooropener.sqlite"},
		Ledger: LedgerConfig{
			CleanupInterval: Duration(24 * time.Hour),
			RetentionDays:   30,
		},
		GPIO: GPIOConfig{
			Enabled:   true,
			Chip:      "gpiochip0",
			Relay1In:  20,
			Relay1LED: 13,
			Relay2In:  21,
			Relay2LED: 19,
			BellWork:  16,
			BellLED:   26,
			RunLED:    5,
			OnlineLED: 6,
		},
	}
}

// Load reads and parses the configuration file. A missing file leaves the
// compiled-in defaults in effect.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = Duration(10 * time.Second)
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
	if cfg.Ledger.CleanupInterval == 0 {
		cfg.Ledger.CleanupInterval = Duration(24 * time.Hour)
	}
	if cfg.Ledger.RetentionDays == 0 {
		cfg.Ledger.RetentionDays = 30
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./dooropener.sqlite"
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "dooropener.json"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = "gpiochip0"
	}

	return &cfg, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
