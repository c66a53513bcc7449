package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the mail-sync backend.
type BackendConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// RequestTimeoutSec bounds every individual HTTP call.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`

	// ConfirmPollTimeoutSec bounds the post-test confirmation poll the
	// sync orchestrator runs before starting a job.
	ConfirmPollTimeoutSec int `mapstructure:"confirm_poll_timeout_sec" yaml:"confirm_poll_timeout_sec"`

	// ReloadDelaySec is how long to wait after a sync job starts before
	// reloading the email list.
	ReloadDelaySec int `mapstructure:"reload_delay_sec" yaml:"reload_delay_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`

	// TestResultDisplaySec is how long an advisory connection-test result
	// stays visible before it is cleared.
	TestResultDisplaySec int `mapstructure:"test_result_display_sec" yaml:"test_result_display_sec"`
}

// LogConfig holds logging settings. The TUI owns stdout, so logs go
// to a file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend   BackendConfig `mapstructure:"backend" yaml:"backend"`
	Display   DisplayConfig `mapstructure:"display" yaml:"display"`
	Log       LogConfig     `mapstructure:"log" yaml:"log"`
	CachePath string        `mapstructure:"cache_path" yaml:"cache_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/maildeck/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "maildeck", "config.yaml")
}

// defaultCachePath returns the default SQLite cache location next to the
// config file.
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "maildeck.db")
	}
	return filepath.Join(home, ".config", "maildeck", "cache.db")
}

// defaultLogFile returns the default log file location.
func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "maildeck.log")
	}
	return filepath.Join(home, ".config", "maildeck", "maildeck.log")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:               "http://localhost:8080/api",
			RequestTimeoutSec:     30,
			ConfirmPollTimeoutSec: 15,
			ReloadDelaySec:        2,
		},
		Display: DisplayConfig{
			Theme:                "default",
			PageSize:             DefaultPageSize,
			TestResultDisplaySec: 10,
		},
		Log: LogConfig{
			Level: "info",
			File:  defaultLogFile(),
		},
		CachePath: defaultCachePath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.request_timeout_sec", 30)
	v.SetDefault("backend.confirm_poll_timeout_sec", 15)
	v.SetDefault("backend.reload_delay_sec", 2)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.page_size", DefaultPageSize)
	v.SetDefault("display.test_result_display_sec", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("cache_path", defaultCachePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("cache_path", cfg.CachePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
