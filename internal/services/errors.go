// Package services defines the business logic for farms, herds, herd
// records, finances and milk reporting. This file centralizes service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Lookup errors.
var (
	// ErrFarmNotFound indicates that no farm has the requested slug, or that
	// the farm is not visible to the caller.
	ErrFarmNotFound = errors.New("farm not found")

	// ErrCowNotFound indicates that the farm has no cow with the requested
	// identifier.
	ErrCowNotFound = errors.New("cow not found")
)

// Uniqueness and lifecycle errors.
var (
	// ErrDuplicateFarmName is returned when a farm with exactly the same
	// name already exists. Names differing only in case are allowed.
	ErrDuplicateFarmName = errors.New("a farm with this name already exists")

	// ErrCowArchived is returned when a record is added to an archived cow.
	ErrCowArchived = errors.New("cow is archived")
)

// ValidationError reports an input that violates a field rule. Field uses
// the JSON name of the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
