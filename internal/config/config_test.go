package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "claude" {
		t.Errorf("Provider = %q, want claude", cfg.Provider)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Progress.BarWidth != 30 {
		t.Errorf("Progress.BarWidth = %d, want 30", cfg.Progress.BarWidth)
	}
	if cfg.Patterns.Quota == nil {
		t.Error("Patterns.Quota is nil")
	}
}

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	viper.Set("provider", "Codex")
	viper.Set("paths.logs_dir", "/var/run/batch")
	viper.Set("patterns.quota", map[string][]string{
		"codex": {"weekly cap reached"},
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Provider is normalized to lowercase.
	if cfg.Provider != "codex" {
		t.Errorf("Provider = %q, want codex", cfg.Provider)
	}
	if cfg.Paths.LogsDir != "/var/run/batch" {
		t.Errorf("Paths.LogsDir = %q", cfg.Paths.LogsDir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level not applied: %q", cfg.Logging.Level)
	}
	if got := cfg.Patterns.Quota["codex"]; len(got) != 1 || got[0] != "weekly cap reached" {
		t.Errorf("Patterns.Quota = %v", cfg.Patterns.Quota)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
}
