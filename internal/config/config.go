// Package config loads and validates the mmv configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MMQConfig describes how to invoke the external tool.
type MMQConfig struct {
	Executable string   `yaml:"executable"`
	DB         string   `yaml:"db"`
	Timeout    Duration `yaml:"timeout"`
}

// Validate validates the tool configuration.
func (c *MMQConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Executable, validation.Required),
	); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("mmq: timeout must be positive")
	}
	return nil
}

// HistoryConfig holds the local history store settings. An empty Path
// disables history.
type HistoryConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	if c.Path == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxEntries, validation.Required, validation.Min(1)),
	)
}

// PreviewConfig holds the live preview server settings.
type PreviewConfig struct {
	Port        int      `yaml:"port"`
	Debounce    Duration `yaml:"debounce"`
	OpenBrowser bool     `yaml:"open_browser"`
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("preview: debounce must be positive")
	}
	return nil
}

// Address returns the listen address for the preview server. The preview
// binds loopback only.
func (c *PreviewConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	SidebarWidth int    `yaml:"sidebar_width"`
	SearchLimit  int    `yaml:"search_limit"`
	Theme        string `yaml:"theme"`
}

// Validate validates the TUI configuration.
func (c *TUIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SidebarWidth, validation.Required, validation.Min(20)),
		validation.Field(&c.SearchLimit, validation.Required, validation.Min(1)),
	)
}

// LogConfig holds logging settings. The TUI owns the terminal, so logs go
// to a file.
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// SlogLevel maps the configured level string to a slog.Level.
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the full application configuration.
type Config struct {
	MMQ     MMQConfig     `yaml:"mmq"`
	History HistoryConfig `yaml:"history"`
	Preview PreviewConfig `yaml:"preview"`
	TUI     TUIConfig     `yaml:"tui"`
	Log     LogConfig     `yaml:"log"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.MMQ.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	if err := c.TUI.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MMQ: MMQConfig{
			Executable: "mmq",
			Timeout:    Duration(30 * time.Second),
		},
		History: HistoryConfig{
			Path:       "~/.mmv/mmv.db",
			MaxEntries: 200,
		},
		Preview: PreviewConfig{
			Port:        8383,
			Debounce:    Duration(200 * time.Millisecond),
			OpenBrowser: true,
		},
		TUI: TUIConfig{
			SidebarWidth: 30,
			SearchLimit:  10,
			Theme:        "default",
		},
		Log: LogConfig{
			Level: "info",
			Path:  "~/.mmv/mmv.log",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mmv", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// Load reads the config file at path, expanding environment variables
// before parsing. A missing file writes the defaults back and returns
// them, so a first run leaves a template to edit.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if saveErr := Save(path, cfg); saveErr != nil {
			return nil, fmt.Errorf("write default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
