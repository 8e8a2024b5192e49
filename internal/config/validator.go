package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "engine.min_units")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid result output formats
func ValidOutputFormats() []string {
	return []string{"json", "markdown", "both"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Engine config
	errors = append(errors, c.validateEngine()...)

	// Validate Generator config
	errors = append(errors, c.validateGenerator()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	// Validate Output config
	errors = append(errors, c.validateOutput()...)

	return errors
}

// validateEngine validates the decomposition engine settings
func (c *Config) validateEngine() []ValidationError {
	var errors []ValidationError

	if c.Engine.MinUnits < 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.min_units",
			Value:   c.Engine.MinUnits,
			Message: "must be at least 1",
		})
	}

	// Generous upper bound; a decomposition this wide is never actionable
	const maxUnitsLimit = 50
	if c.Engine.MaxUnits > maxUnitsLimit {
		errors = append(errors, ValidationError{
			Field:   "engine.max_units",
			Value:   c.Engine.MaxUnits,
			Message: fmt.Sprintf("exceeds maximum of %d", maxUnitsLimit),
		})
	}
	if c.Engine.MaxUnits < c.Engine.MinUnits {
		errors = append(errors, ValidationError{
			Field:   "engine.max_units",
			Value:   c.Engine.MaxUnits,
			Message: fmt.Sprintf("must be at least min_units (%d)", c.Engine.MinUnits),
		})
	}

	const minSampleCount = 1
	const maxSampleCount = 10
	if c.Engine.Samples < minSampleCount {
		errors = append(errors, ValidationError{
			Field:   "engine.samples",
			Value:   c.Engine.Samples,
			Message: fmt.Sprintf("must be at least %d", minSampleCount),
		})
	}
	if c.Engine.Samples > maxSampleCount {
		errors = append(errors, ValidationError{
			Field:   "engine.samples",
			Value:   c.Engine.Samples,
			Message: fmt.Sprintf("exceeds maximum of %d", maxSampleCount),
		})
	}
	if c.Engine.MinSamples < 1 || c.Engine.MinSamples > c.Engine.Samples {
		errors = append(errors, ValidationError{
			Field:   "engine.min_samples",
			Value:   c.Engine.MinSamples,
			Message: fmt.Sprintf("must be between 1 and samples (%d)", c.Engine.Samples),
		})
	}

	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.confidence_threshold",
			Value:   c.Engine.ConfidenceThreshold,
			Message: "must be between 0 and 1",
		})
	}
	if c.Engine.ConsistencyThreshold < 0 || c.Engine.ConsistencyThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.consistency_threshold",
			Value:   c.Engine.ConsistencyThreshold,
			Message: "must be between 0 and 1",
		})
	}
	if c.Engine.ImplicitConfidenceFloor < 0 || c.Engine.ImplicitConfidenceFloor > 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.implicit_confidence_floor",
			Value:   c.Engine.ImplicitConfidenceFloor,
			Message: "must be between 0 and 1",
		})
	}

	if c.Engine.RetryBudget < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.retry_budget",
			Value:   c.Engine.RetryBudget,
			Message: "must be non-negative",
		})
	}
	if c.Engine.RetryBackoff < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.retry_backoff",
			Value:   c.Engine.RetryBackoff,
			Message: "must be non-negative",
		})
	}
	if c.Engine.CallTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.call_timeout",
			Value:   c.Engine.CallTimeout,
			Message: "must be positive",
		})
	}

	if c.Engine.MaxDepth < 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.max_depth",
			Value:   c.Engine.MaxDepth,
			Message: "must be at least 1",
		})
	}

	if c.Engine.Weights.Sum() <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.invest_weights",
			Value:   c.Engine.Weights.Sum(),
			Message: "weights must sum to a positive value",
		})
	}

	return errors
}

// validateGenerator validates the generator settings.
// The API key is deliberately not checked here: it may arrive via
// environment variable, and key presence is enforced at generator
// construction time.
func (c *Config) validateGenerator() []ValidationError {
	var errors []ValidationError

	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "generator.temperature",
			Value:   c.Generator.Temperature,
			Message: "must be between 0 and 2",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Log dir validation - if set, check for invalid characters
	if c.Logging.Dir != "" {
		if strings.ContainsRune(c.Logging.Dir, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "logging.dir",
				Value:   c.Logging.Dir,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(c.Logging.Dir) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "logging.dir",
				Value:   c.Logging.Dir,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	// Validate output format
	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	// Output file must not be empty if format includes json
	if (c.Output.Format == "json" || c.Output.Format == "both") && c.Output.File == "" {
		errors = append(errors, ValidationError{
			Field:   "output.file",
			Value:   c.Output.File,
			Message: "cannot be empty when format is 'json' or 'both'",
		})
	}

	return errors
}
