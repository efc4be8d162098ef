package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Argument errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTypeMismatch    = fmt.Errorf("%w: type mismatch", ErrInvalidArgument)
	ErrInvalidConfig   = fmt.Errorf("%w: configuration", ErrInvalidArgument)

	// Lookup errors
	ErrColumnNotFound = errors.New("column not found")

	// Statistics errors
	ErrEmptyColumn = errors.New("column has no observed values")
)

// Error constructors with context
func NewInvalidArgumentError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, field, reason)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func NewTypeMismatchError(column string, dtype string) error {
	return fmt.Errorf("%w: column %q has dtype %s, numeric required", ErrTypeMismatch, column, dtype)
}

func NewConfigError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, reason, err)
}

// Error checking helpers
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}
