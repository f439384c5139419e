// Package config loads gradeflow configuration via viper into a single
// immutable Config value constructed once at process start. Components
// receive the value through their constructors; nothing reads viper
// globals after loading.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete gradeflow configuration.
type Config struct {
	Provider string         `mapstructure:"provider"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Progress ProgressConfig `mapstructure:"progress"`
	Patterns PatternsConfig `mapstructure:"patterns"`
}

// PathsConfig controls where gradeflow reads batch artifacts.
type PathsConfig struct {
	// LogsDir is the directory containing captured task output
	// (one subdirectory per task, optionally batch-grouped).
	LogsDir string `mapstructure:"logs_dir"`
	// FinalDir is where final feedback artifacts should exist.
	FinalDir string `mapstructure:"final_dir"`
	// Manifest is the path to the submissions manifest JSON.
	Manifest string `mapstructure:"manifest"`
}

// LoggingConfig controls structured logging behavior.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// ProgressConfig controls progress bar rendering.
type ProgressConfig struct {
	// BarWidth is the progress bar width in columns (default: 30)
	BarWidth int `mapstructure:"bar_width"`
}

// PatternsConfig carries provider error-vocabulary overrides. The
// classifier treats phrase lists as data so new provider phrasings can
// be added here without a code change.
type PatternsConfig struct {
	// Quota maps a provider name to extra quota/rate-limit phrases,
	// merged with the built-in vocabulary.
	Quota map[string][]string `mapstructure:"quota"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: "claude",
		Logging: LoggingConfig{
			Level: "info",
		},
		Progress: ProgressConfig{
			BarWidth: 30,
		},
		Patterns: PatternsConfig{
			Quota: map[string][]string{},
		},
	}
}

// SetDefaults registers the default values with viper so they apply even
// without a config file.
func SetDefaults() {
	d := Default()
	viper.SetDefault("provider", d.Provider)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("progress.bar_width", d.Progress.BarWidth)
}

// ConfigDir returns the user configuration directory for gradeflow.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gradeflow"
	}
	return filepath.Join(home, ".config", "gradeflow")
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Provider = strings.ToLower(cfg.Provider)
	return cfg, nil
}
