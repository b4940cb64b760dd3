// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for input validation and reconciliation failures
var (
	ErrOutOfRange        = errors.New("value out of range")
	ErrBadFormat         = errors.New("malformed value")
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrDependencyMissing = errors.New("required dependency missing")
	ErrNotApplied        = errors.New("lab not applied")
)

// RangeError reports an integer parameter outside its allowed range.
// Detected before any derivation occurs, so no partial graph is produced.
type RangeError struct {
	Param string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Param, e.Min, e.Max, e.Value)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// NewRangeError creates a range error for an integer parameter.
func NewRangeError(param string, value, min, max int) *RangeError {
	return &RangeError{Param: param, Value: value, Min: min, Max: max}
}

// FormatError reports a string parameter that does not match its
// required syntax (e.g. an IPv4 dotted quad).
type FormatError struct {
	Param string
	Value string
	Want  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q is not a valid %s", e.Param, e.Value, e.Want)
}

func (e *FormatError) Unwrap() error {
	return ErrBadFormat
}

// NewFormatError creates a format error for a string parameter.
func NewFormatError(param, value, want string) *FormatError {
	return &FormatError{Param: param, Value: value, Want: want}
}

// DependencyError reports a resource whose dependency is absent from the
// graph or from live cloud state.
type DependencyError struct {
	Resource      string
	DependsOn     string
	DependsOnKind string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s requires %s %q to exist", e.Resource, e.DependsOnKind, e.DependsOn)
}

func (e *DependencyError) Unwrap() error {
	return ErrDependencyMissing
}

// NewDependencyError creates a dependency error.
func NewDependencyError(resource, dependsOnKind, dependsOn string) *DependencyError {
	return &DependencyError{
		Resource:      resource,
		DependsOn:     dependsOn,
		DependsOnKind: dependsOnKind,
	}
}
