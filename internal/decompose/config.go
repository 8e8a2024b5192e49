// Package decompose contains the decomposition engine: strategy selection,
// consistency sampling against the external draft generator, INVEST
// scoring, graph validation, anti-pattern scanning, and confidence
// aggregation, packaged into a single DecompositionResult per run.
package decompose

import (
	"time"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/invest"
)

// EngineConfig carries every tunable the engine consumes. It is passed
// explicitly into each component rather than read from ambient global
// state, so scoring stays pure and testable in isolation.
type EngineConfig struct {
	// MinUnits and MaxUnits bound acceptable decomposition sizes. Item
	// constraints narrow these per run, never widen them.
	MinUnits int `mapstructure:"min_units" json:"min_units"`
	MaxUnits int `mapstructure:"max_units" json:"max_units"`

	// ConfidenceThreshold gates auto-acceptance: results below it are
	// flagged requires_review.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" json:"confidence_threshold"`

	// MaxDepth is the dependency-chain depth warning bound.
	MaxDepth int `mapstructure:"max_depth" json:"max_depth"`

	// Samples is how many drafts the orchestrator requests per round.
	Samples int `mapstructure:"samples" json:"samples"`

	// MinSamples is the partial-success join floor: a round proceeds once
	// this many samples return.
	MinSamples int `mapstructure:"min_samples" json:"min_samples"`

	// ConsistencyThreshold triggers one guided regeneration round when
	// cross-sample agreement falls below it.
	ConsistencyThreshold float64 `mapstructure:"consistency_threshold" json:"consistency_threshold"`

	// RetryBudget bounds whole-batch retries against the generator.
	RetryBudget int `mapstructure:"retry_budget" json:"retry_budget"`

	// RetryBackoff is the base delay between batch retries; actual delay
	// doubles per attempt.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" json:"retry_backoff"`

	// CallTimeout bounds each individual generator call.
	CallTimeout time.Duration `mapstructure:"call_timeout" json:"call_timeout"`

	// ImplicitConfidenceFloor discards weaker inferred edges at graph
	// construction time.
	ImplicitConfidenceFloor float64 `mapstructure:"implicit_confidence_floor" json:"implicit_confidence_floor"`

	// Weights are the INVEST criterion weights.
	Weights invest.Weights `mapstructure:"invest_weights" json:"invest_weights"`
}

// DefaultEngineConfig returns the stock configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinUnits:                3,
		MaxUnits:                7,
		ConfidenceThreshold:     0.7,
		MaxDepth:                5,
		Samples:                 3,
		MinSamples:              2,
		ConsistencyThreshold:    0.6,
		RetryBudget:             3,
		RetryBackoff:            500 * time.Millisecond,
		CallTimeout:             60 * time.Second,
		ImplicitConfidenceFloor: 0.7,
		Weights:                 invest.DefaultWeights(),
	}
}

// Validate rejects configurations the engine cannot run with.
func (c EngineConfig) Validate() error {
	if c.MinUnits < 1 {
		return errors.NewValidationError("min_units must be at least 1").
			WithField("min_units").WithValue(c.MinUnits)
	}
	if c.MaxUnits < c.MinUnits {
		return errors.NewValidationError("max_units must not be below min_units").
			WithField("max_units").WithValue(c.MaxUnits)
	}
	if c.Samples < 1 {
		return errors.NewValidationError("samples must be at least 1").
			WithField("samples").WithValue(c.Samples)
	}
	if c.MinSamples < 1 || c.MinSamples > c.Samples {
		return errors.NewValidationError("min_samples must be between 1 and samples").
			WithField("min_samples").WithValue(c.MinSamples)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.NewValidationError("confidence_threshold must lie in [0,1]").
			WithField("confidence_threshold").WithValue(c.ConfidenceThreshold)
	}
	if c.ImplicitConfidenceFloor < 0 || c.ImplicitConfidenceFloor > 1 {
		return errors.NewValidationError("implicit_confidence_floor must lie in [0,1]").
			WithField("implicit_confidence_floor").WithValue(c.ImplicitConfidenceFloor)
	}
	if c.Weights.Sum() <= 0 {
		return errors.NewValidationError("invest weights must sum to a positive value").
			WithField("invest_weights")
	}
	return nil
}

// boundsFor narrows the configured unit-count bounds by per-item
// constraints. Constraints tighten, never widen.
func (c EngineConfig) boundsFor(minConstraint, maxConstraint int) (int, int) {
	min, max := c.MinUnits, c.MaxUnits
	if minConstraint > min {
		min = minConstraint
	}
	if maxConstraint > 0 && maxConstraint < max {
		max = maxConstraint
	}
	if max < min {
		max = min
	}
	return min, max
}
