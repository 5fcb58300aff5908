package store

import (
	"errors"
	"fmt"

	"atlashq/meridian/pkg/policy"
)

// ValidationError reports malformed or out-of-range caller input to a
// write operation. It is an expected, caller-correctable outcome.
type ValidationError struct {
	// Field names the first failing input field.
	Field string

	// Message describes the violation.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NotFoundError reports a lookup for a version id that does not exist.
type NotFoundError struct {
	VersionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("policy version %q not found", e.VersionID)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNotFound reports whether err is a version-not-found failure.
func IsNotFound(err error) bool {
	var nferr *NotFoundError
	return errors.As(err, &nferr)
}

// validateActor checks the actor name shared by all write operations.
func validateActor(actorName string) error {
	if isBlank(actorName) {
		return &ValidationError{Field: "actorName", Message: "must not be blank"}
	}
	return nil
}

// validateConfig runs domain validation and converts the result into the
// store's validation error type.
func validateConfig(cfg policy.Config) error {
	err := policy.Validate(cfg)
	if err == nil {
		return nil
	}

	var perr *policy.ValidationError
	if errors.As(err, &perr) {
		return &ValidationError{Field: "config." + perr.Field, Message: perr.Message}
	}
	return &ValidationError{Field: "config", Message: err.Error()}
}
