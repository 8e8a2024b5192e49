package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default engine config
	if cfg.Engine.MinUnits != 3 {
		t.Errorf("Engine.MinUnits = %d, want 3", cfg.Engine.MinUnits)
	}
	if cfg.Engine.MaxUnits != 7 {
		t.Errorf("Engine.MaxUnits = %d, want 7", cfg.Engine.MaxUnits)
	}
	if cfg.Engine.Samples != 3 {
		t.Errorf("Engine.Samples = %d, want 3", cfg.Engine.Samples)
	}
	if cfg.Engine.MinSamples != 2 {
		t.Errorf("Engine.MinSamples = %d, want 2", cfg.Engine.MinSamples)
	}
	if cfg.Engine.ConfidenceThreshold != 0.7 {
		t.Errorf("Engine.ConfidenceThreshold = %f, want 0.7", cfg.Engine.ConfidenceThreshold)
	}
	if cfg.Engine.CallTimeout != 60*time.Second {
		t.Errorf("Engine.CallTimeout = %v, want 60s", cfg.Engine.CallTimeout)
	}
	if cfg.Engine.RetryBackoff != 500*time.Millisecond {
		t.Errorf("Engine.RetryBackoff = %v, want 500ms", cfg.Engine.RetryBackoff)
	}

	// Verify default generator config
	if cfg.Generator.APIKey != "" {
		t.Error("Generator.APIKey should be empty by default")
	}
	if cfg.Generator.Temperature != 0.8 {
		t.Errorf("Generator.Temperature = %f, want 0.8", cfg.Generator.Temperature)
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// Verify default output config
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "markdown")
	}
	if cfg.Output.File != ".slicer-result.json" {
		t.Errorf("Output.File = %q, want %q", cfg.Output.File, ".slicer-result.json")
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
}

func TestDefaultPassesValidation(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Default() should pass validation, got: %v", ValidationErrors(errs))
	}
}

func TestLoadFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("engine.max_units", 9)
	viper.Set("engine.call_timeout", "30s")
	viper.Set("generator.model", "gpt-4o")
	viper.Set("output.format", "both")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.MaxUnits != 9 {
		t.Errorf("Engine.MaxUnits = %d, want 9", cfg.Engine.MaxUnits)
	}
	if cfg.Engine.CallTimeout != 30*time.Second {
		t.Errorf("Engine.CallTimeout = %v, want 30s", cfg.Engine.CallTimeout)
	}
	if cfg.Generator.Model != "gpt-4o" {
		t.Errorf("Generator.Model = %q, want %q", cfg.Generator.Model, "gpt-4o")
	}
	if cfg.Output.Format != "both" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "both")
	}

	// Untouched keys keep their defaults
	if cfg.Engine.MinUnits != 3 {
		t.Errorf("Engine.MinUnits = %d, want default 3", cfg.Engine.MinUnits)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("engine.min_units", 0)
	viper.Set("output.format", "xml")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject invalid configuration")
	}
	if !strings.Contains(err.Error(), "engine.min_units") {
		t.Errorf("error should mention engine.min_units, got: %v", err)
	}
	if !strings.Contains(err.Error(), "output.format") {
		t.Errorf("error should mention output.format, got: %v", err)
	}
}

func TestGetFallsBackToDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("engine.samples", -1)

	cfg := Get()
	if cfg.Engine.Samples != 3 {
		t.Errorf("Get() should fall back to defaults on invalid config, Samples = %d", cfg.Engine.Samples)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "slicer") {
		t.Errorf("ConfigDir() = %q, want /tmp/xdg/slicer", got)
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigFile(); got != filepath.Join("/tmp/xdg", "slicer", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}

func TestResolveLogDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"empty uses config dir", "", filepath.Join("/tmp/xdg", "slicer", "logs")},
		{"absolute path kept", "/var/log/slicer", "/var/log/slicer"},
		{"relative path kept", "logs", "logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := LoggingConfig{Dir: tt.dir}
			if got := l.ResolveLogDir(); got != tt.want {
				t.Errorf("ResolveLogDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveLogDirExpandsHome(t *testing.T) {
	l := LoggingConfig{Dir: "~/slicer-logs"}
	got := l.ResolveLogDir()
	if strings.HasPrefix(got, "~") {
		t.Errorf("ResolveLogDir() should expand ~, got %q", got)
	}
	if !strings.HasSuffix(got, "slicer-logs") {
		t.Errorf("ResolveLogDir() = %q, want suffix slicer-logs", got)
	}
}
