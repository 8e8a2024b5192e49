package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/slicekit/slicer/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Slicer configuration",
	Long: `View or modify Slicer configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  slicer config set engine.max_units 6
  slicer config set generator.model gpt-4o
  slicer config set output.format both

Valid keys:
  engine.min_units              - Fewest units an acceptable decomposition may contain
  engine.max_units              - Most units an acceptable decomposition may contain
  engine.samples                - Drafts sampled per generation round
  engine.min_samples            - Samples required before a round proceeds
  engine.confidence_threshold   - Confidence below which results need review
  engine.consistency_threshold  - Agreement below which one guided retry runs
  engine.retry_budget           - Whole-batch retries against the generator
  engine.max_depth              - Dependency chain depth warning bound
  generator.model               - Chat model used for draft generation
  generator.base_url            - API endpoint override
  generator.temperature         - Sampling temperature
  logging.enabled               - Enable file logging (true/false)
  logging.level                 - Log level: debug, info, warn, error
  output.format                 - Result output format: json, markdown, both
  output.file                   - JSON result file path
  output.color                  - Styled terminal output (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/slicer/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	// Engine settings
	fmt.Println("engine:")
	fmt.Printf("  min_units: %d\n", cfg.Engine.MinUnits)
	fmt.Printf("  max_units: %d\n", cfg.Engine.MaxUnits)
	fmt.Printf("  samples: %d\n", cfg.Engine.Samples)
	fmt.Printf("  min_samples: %d\n", cfg.Engine.MinSamples)
	fmt.Printf("  confidence_threshold: %.2f\n", cfg.Engine.ConfidenceThreshold)
	fmt.Printf("  consistency_threshold: %.2f\n", cfg.Engine.ConsistencyThreshold)
	fmt.Printf("  implicit_confidence_floor: %.2f\n", cfg.Engine.ImplicitConfidenceFloor)
	fmt.Printf("  retry_budget: %d\n", cfg.Engine.RetryBudget)
	fmt.Printf("  retry_backoff: %s\n", cfg.Engine.RetryBackoff)
	fmt.Printf("  call_timeout: %s\n", cfg.Engine.CallTimeout)
	fmt.Printf("  max_depth: %d\n", cfg.Engine.MaxDepth)

	// Generator settings (the API key is never printed)
	fmt.Println("generator:")
	model := cfg.Generator.Model
	if model == "" {
		model = "(default)"
	}
	fmt.Printf("  model: %s\n", model)
	if cfg.Generator.BaseURL != "" {
		fmt.Printf("  base_url: %s\n", cfg.Generator.BaseURL)
	}
	fmt.Printf("  temperature: %.2f\n", cfg.Generator.Temperature)

	// Logging settings
	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  dir: %s\n", cfg.Logging.ResolveLogDir())

	// Output settings
	fmt.Println("output:")
	fmt.Printf("  format: %s\n", cfg.Output.Format)
	fmt.Printf("  file: %s\n", cfg.Output.File)
	fmt.Printf("  color: %v\n", cfg.Output.Color)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"engine.min_units":             "int",
		"engine.max_units":             "int",
		"engine.samples":               "int",
		"engine.min_samples":           "int",
		"engine.confidence_threshold":  "float",
		"engine.consistency_threshold": "float",
		"engine.retry_budget":          "int",
		"engine.max_depth":             "int",
		"generator.model":              "string",
		"generator.base_url":           "string",
		"generator.temperature":        "float",
		"logging.enabled":              "bool",
		"logging.level":                "string",
		"output.format":                "string",
		"output.file":                  "string",
		"output.color":                 "bool",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'slicer config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		switch key {
		case "logging.level":
			if !contains(config.ValidLogLevels(), value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidLogLevels(), ", "))
			}
		case "output.format":
			if !contains(config.ValidOutputFormats(), value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidOutputFormats(), ", "))
			}
		}
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	case "float":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected number", key)
		}
		if floatVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = floatVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'slicer config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Slicer Configuration

# Decomposition engine settings
engine:
  # Bounds on the unit count of an acceptable decomposition
  min_units: 3
  max_units: 7
  # Drafts sampled per generation round, and how many must return
  samples: 3
  min_samples: 2
  # Results below this confidence are flagged for review
  confidence_threshold: 0.7
  # Agreement below this triggers one guided regeneration round
  consistency_threshold: 0.6
  # Inferred dependency edges weaker than this are discarded
  implicit_confidence_floor: 0.7
  # Whole-batch retries against the generator, and the base backoff
  retry_budget: 3
  retry_backoff: 500ms
  # Timeout per generator call
  call_timeout: 60s
  # Dependency chains deeper than this produce a warning
  max_depth: 5

# Draft generator settings
generator:
  # API key; leave empty to use the OPENAI_API_KEY environment variable
  api_key: ""
  # Chat model (empty uses the built-in default)
  model: ""
  # Endpoint override for proxies and compatible local servers
  base_url: ""
  temperature: 0.8

# Logging settings
logging:
  enabled: true
  # Log level: debug, info, warn, error
  level: info
  # Log directory (empty uses the config directory)
  dir: ""

# Result output settings
output:
  # Output format: json, markdown, or both
  format: markdown
  # JSON result file path
  file: .slicer-result.json
  # Styled terminal output
  color: true
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize Slicer's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Println(viper.ConfigFileUsed())
		return nil
	}

	fmt.Printf("%s (not created yet - run 'slicer config init')\n", configFile)
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
