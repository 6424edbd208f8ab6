package topic

import (
	"errors"
	"fmt"
)

// ErrTrainingInProgress is returned when a retraining cycle is already running
var ErrTrainingInProgress = errors.New("training already in progress")

// ValidationError reports invalid caller input. Retrying verbatim will not help.
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

// DependencyError reports an upstream collaborator failure (store, bus, model).
// Callers may retry.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Upstream wraps err as a DependencyError; nil stays nil
func Upstream(dependency string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Dependency: dependency, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDependency reports whether err is, or wraps, a DependencyError
func IsDependency(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
