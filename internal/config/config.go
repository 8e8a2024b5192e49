package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/slicekit/slicer/internal/decompose"
	"github.com/slicekit/slicer/internal/generator"
)

// Config represents the complete Slicer configuration
type Config struct {
	Engine    decompose.EngineConfig `mapstructure:"engine"`
	Generator generator.OpenAIConfig `mapstructure:"generator"`
	Logging   LoggingConfig          `mapstructure:"logging"`
	Output    OutputConfig           `mapstructure:"output"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory for log files.
	// If empty, defaults to a "logs" directory under the config directory.
	Dir string `mapstructure:"dir"`
}

// OutputConfig controls where and how decomposition results are written
type OutputConfig struct {
	// Format is the default output format: "json", "markdown", or "both" (default: "markdown")
	Format string `mapstructure:"format"`
	// File is the output file path for JSON results (default: ".slicer-result.json")
	File string `mapstructure:"file"`
	// Color enables styled terminal output (default: true)
	Color bool `mapstructure:"color"`
}

// ResolveLogDir returns the resolved log directory path.
// Supports ~ for home directory expansion.
func (l *LoggingConfig) ResolveLogDir() string {
	if l.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}

	path := l.Dir
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Engine: decompose.DefaultEngineConfig(),
		Generator: generator.OpenAIConfig{
			APIKey:      "", // Empty means use OPENAI_API_KEY
			Model:       "", // Empty means use the generator's default model
			BaseURL:     "",
			Temperature: 0.8,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "", // Empty means use <config dir>/logs
		},
		Output: OutputConfig{
			Format: "markdown",
			File:   ".slicer-result.json",
			Color:  true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Engine defaults
	viper.SetDefault("engine.min_units", defaults.Engine.MinUnits)
	viper.SetDefault("engine.max_units", defaults.Engine.MaxUnits)
	viper.SetDefault("engine.confidence_threshold", defaults.Engine.ConfidenceThreshold)
	viper.SetDefault("engine.max_depth", defaults.Engine.MaxDepth)
	viper.SetDefault("engine.samples", defaults.Engine.Samples)
	viper.SetDefault("engine.min_samples", defaults.Engine.MinSamples)
	viper.SetDefault("engine.consistency_threshold", defaults.Engine.ConsistencyThreshold)
	viper.SetDefault("engine.retry_budget", defaults.Engine.RetryBudget)
	viper.SetDefault("engine.retry_backoff", defaults.Engine.RetryBackoff)
	viper.SetDefault("engine.call_timeout", defaults.Engine.CallTimeout)
	viper.SetDefault("engine.implicit_confidence_floor", defaults.Engine.ImplicitConfidenceFloor)
	viper.SetDefault("engine.invest_weights.independent", defaults.Engine.Weights.Independent)
	viper.SetDefault("engine.invest_weights.negotiable", defaults.Engine.Weights.Negotiable)
	viper.SetDefault("engine.invest_weights.valuable", defaults.Engine.Weights.Valuable)
	viper.SetDefault("engine.invest_weights.estimable", defaults.Engine.Weights.Estimable)
	viper.SetDefault("engine.invest_weights.small", defaults.Engine.Weights.Small)
	viper.SetDefault("engine.invest_weights.testable", defaults.Engine.Weights.Testable)

	// Generator defaults
	viper.SetDefault("generator.api_key", defaults.Generator.APIKey)
	viper.SetDefault("generator.model", defaults.Generator.Model)
	viper.SetDefault("generator.base_url", defaults.Generator.BaseURL)
	viper.SetDefault("generator.temperature", defaults.Generator.Temperature)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.file", defaults.Output.File)
	viper.SetDefault("output.color", defaults.Output.Color)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "slicer")
	}
	// Fall back to ~/.config/slicer
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slicer"
	}
	return filepath.Join(home, ".config", "slicer")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
