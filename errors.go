package outline

import (
	"errors"
	"fmt"
)

// Sentinel errors for outline package.
var (
	// ErrClosed is returned by an engine after Close.
	ErrClosed = errors.New("outline: engine closed")

	// ErrStopped is returned by Submit and Control after Run has returned.
	ErrStopped = errors.New("outline: run loop stopped")

	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("outline: invalid config")
)

// ConfigError reports one invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("outline: invalid config: %s %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
