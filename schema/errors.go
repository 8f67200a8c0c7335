package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the benchmark pipeline. Typed errors below wrap one of these,
// so callers can branch with errors.Is.
var (
	// ErrConfig indicates a malformed benchmark configuration.
	ErrConfig = errors.New("invalid benchmark config")

	// ErrLookup indicates a reference to a dataset, column or metric that does not exist.
	ErrLookup = errors.New("lookup failed")

	// ErrNotFound indicates an unknown benchmark or system id.
	ErrNotFound = errors.New("not found")
)

// ConfigError describes a benchmark configuration problem.
type ConfigError struct {
	// Benchmark is the id of the offending config, when known.
	Benchmark string

	// Reason is a human readable description of the problem.
	Reason string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	if e.Benchmark == "" {
		return fmt.Sprintf("%v: %s", ErrConfig, e.Reason)
	}
	return fmt.Sprintf("%v %q: %s", ErrConfig, e.Benchmark, e.Reason)
}

// Unwrap returns ErrConfig.
func (e *ConfigError) Unwrap() error { return ErrConfig }

// NewConfigError creates a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// LookupError describes a failed reference to a dataset, column or metric.
type LookupError struct {
	// Kind is what was looked up, e.g. "dataset", "column" or "metric".
	Kind string

	// Key is the value that could not be resolved.
	Key string

	// System is the system being processed, if any.
	System string
}

// Error implements the error interface for LookupError.
func (e *LookupError) Error() string {
	if e.System == "" {
		return fmt.Sprintf("%v: unknown %s %s", ErrLookup, e.Kind, e.Key)
	}
	return fmt.Sprintf("%v: unknown %s %s for system %q", ErrLookup, e.Kind, e.Key, e.System)
}

// Unwrap returns ErrLookup.
func (e *LookupError) Unwrap() error { return ErrLookup }

// NotFoundError describes an unknown benchmark or system id.
type NotFoundError struct {
	Kind string
	ID   string

	// Suggestion is the closest known id, if one is close enough.
	Suggestion string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s id: %s %v", e.Kind, e.ID, ErrNotFound)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	return b.String()
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
