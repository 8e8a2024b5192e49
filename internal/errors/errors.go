// Package errors provides centralized error definitions and error handling
// utilities for the slicer codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - GeneratorError: failures of the external draft generator
//   - GraphError: dependency graph construction and validation failures
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewGeneratorError("generator unreachable", errors.ErrGeneratorUnavailable).
//	    WithAttempts(3)
//
//	err := errors.NewGraphError("cycle repair exhausted", errors.ErrCycleUnresolvable).
//	    WithCycle([]string{"unit-a", "unit-b"})
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrCycleUnresolvable) { ... }
//
//	var graphErr *errors.GraphError
//	if errors.As(err, &graphErr) { diagnose(graphErr.Cycle) }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Generator-related sentinel errors
var (
	// ErrGeneratorUnavailable indicates the external draft generator could
	// not be reached within the retry budget. Fatal for the run.
	ErrGeneratorUnavailable = New("draft generator unavailable")
	// ErrInvalidDraftFormat indicates the generator returned a structure
	// that could not be parsed as a candidate decomposition.
	ErrInvalidDraftFormat = New("invalid draft format")
	// ErrEmptyDraft indicates the generator returned a draft with no units.
	ErrEmptyDraft = New("draft contains no units")
)

// Validation-related sentinel errors
var (
	// ErrUnitCountOutOfBounds indicates the draft contained fewer than
	// min_units or more than max_units.
	ErrUnitCountOutOfBounds = New("unit count out of bounds")
	// ErrCycleUnresolvable indicates cycle repair exhausted removable
	// implicit edges without breaking every cycle.
	ErrCycleUnresolvable = New("dependency cycle unresolvable")
	// ErrEdgeRejected indicates the graph builder rejected an edge
	// (self-loop, duplicate, or unknown endpoint).
	ErrEdgeRejected = New("edge rejected by graph builder")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// SlicerError is the base interface for all slicer errors. It extends the
// standard error interface with classification methods.
type SlicerError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsRetryable() bool { return e.retryable }

func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// GeneratorError represents failures of the external draft generator.
//
// Example:
//
//	err := errors.NewGeneratorError("all samples failed", errors.ErrGeneratorUnavailable)
//	err = err.WithRunID("a1b2c3d4").WithAttempts(3)
type GeneratorError struct {
	baseError
	RunID    string
	Attempts int
}

// NewGeneratorError creates a new GeneratorError.
func NewGeneratorError(message string, cause error) *GeneratorError {
	return &GeneratorError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithRunID adds a run ID to the error context.
func (e *GeneratorError) WithRunID(id string) *GeneratorError {
	e.RunID = id
	return e
}

// WithAttempts records how many attempts were made before giving up.
func (e *GeneratorError) WithAttempts(n int) *GeneratorError {
	e.Attempts = n
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *GeneratorError) WithRetryable(r bool) *GeneratorError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *GeneratorError) Error() string {
	var parts []string
	if e.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", e.RunID))
	}
	if e.Attempts > 0 {
		parts = append(parts, fmt.Sprintf("attempts=%d", e.Attempts))
	}

	prefix := "generator error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("generator error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *GeneratorError) Is(target error) bool {
	if _, ok := target.(*GeneratorError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// GraphError represents dependency graph construction and validation failures.
//
// Example:
//
//	err := errors.NewGraphError("repair exhausted", errors.ErrCycleUnresolvable).
//	    WithCycle([]string{"unit-a", "unit-b"})
type GraphError struct {
	baseError
	// Cycle is the offending cycle path, when one was found.
	Cycle []string
	// UnitID is the unit an edge-level failure relates to, if any.
	UnitID string
}

// NewGraphError creates a new GraphError.
func NewGraphError(message string, cause error) *GraphError {
	return &GraphError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithCycle attaches the cycle path for diagnostics.
func (e *GraphError) WithCycle(cycle []string) *GraphError {
	e.Cycle = cycle
	return e
}

// WithUnitID adds a unit ID to the error context.
func (e *GraphError) WithUnitID(id string) *GraphError {
	e.UnitID = id
	return e
}

// Error returns the formatted error message.
func (e *GraphError) Error() string {
	var parts []string
	if e.UnitID != "" {
		parts = append(parts, fmt.Sprintf("unit=%s", e.UnitID))
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, fmt.Sprintf("cycle=%s", strings.Join(e.Cycle, "->")))
	}

	prefix := "graph error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("graph error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *GraphError) Is(target error) bool {
	if _, ok := target.(*GraphError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("draft has too many units").
//	    WithField("units").WithValue(12)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for draft sample", 60*time.Second)
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var slicerErr SlicerError
	if As(err, &slicerErr) {
		return slicerErr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to
// end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var slicerErr SlicerError
	if As(err, &slicerErr) {
		return slicerErr.IsUserFacing()
	}

	var validation *ValidationError
	var timeout *TimeoutError
	if As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error. Returns
// SeverityError for errors that don't implement SlicerError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var slicerErr SlicerError
	if As(err, &slicerErr) {
		return slicerErr.Severity()
	}

	return SeverityError
}

// IsFatal reports whether the error ends a decomposition run with no
// result. Fatal conditions are generator unavailability, unparsable
// drafts past the regeneration budget, out-of-bounds unit counts past
// the regeneration budget, and unresolvable cycles.
func IsFatal(err error) bool {
	return Is(err, ErrGeneratorUnavailable) ||
		Is(err, ErrInvalidDraftFormat) ||
		Is(err, ErrUnitCountOutOfBounds) ||
		Is(err, ErrCycleUnresolvable)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
