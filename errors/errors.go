/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a named resource (page, datasource, file) does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when registering a name that is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported is returned when a datasource is asked for a capability it does not declare
	ErrUnsupported = errors.New("unsupported operation")
)

// NotFoundError represents an error when a named resource is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a name is registered twice
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedError is a configuration or usage error: the caller asked a datasource
// for a capability it does not declare. It is never retried.
type UnsupportedError struct {
	Source     string
	Capability string
}

func (e *UnsupportedError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("datasource %q does not support %s", e.Source, e.Capability)
	}
	return fmt.Sprintf("datasource does not support %s", e.Capability)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resourceType, key string) error {
	return &NotFoundError{Type: resourceType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(resourceType, key string) error {
	return &AlreadyExistsError{Type: resourceType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewUnsupportedError creates a new UnsupportedError
func NewUnsupportedError(source, capability string) error {
	return &UnsupportedError{Source: source, Capability: capability}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsupported checks if an error is an unsupported capability error
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
