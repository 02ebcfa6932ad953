package config

import (
	"errors"
	"fmt"
	"strings"
)

// CredentialGuidance is appended to initialization failures caused by a
// credential field.
const CredentialGuidance = "Firebase credentials missing or invalid. Request service-account access via the operator emergency contact channel."

// MissingSettingsSourceError is returned when the settings file does not exist.
type MissingSettingsSourceError struct {
	Path string
}

func (e *MissingSettingsSourceError) Error() string {
	return fmt.Sprintf(
		"settings file %s not found: create it from .env.template and set %s (optional: %s)",
		e.Path,
		strings.Join(RequiredKeys(), ", "),
		strings.Join(OptionalKeys(), ", "),
	)
}

// ValidationError reports one field that failed validation.
// Value holds the received input, or Redacted for sensitive fields.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, e.Value)
}

// ValidationErrors collects every failing field of one load attempt.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d invalid setting(s): %s", len(v), strings.Join(msgs, "; "))
}

// Unwrap exposes each entry to errors.As and errors.Is.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// Fields returns the names of the failing fields in schema order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}

// Has reports whether field failed validation.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// InitializationError wraps any failure of Manager.Load.
type InitializationError struct {
	Cause    error
	Guidance string
}

func (e *InitializationError) Error() string {
	msg := "configuration error: " + e.Cause.Error()
	if e.Guidance != "" {
		msg += ". " + e.Guidance
	}
	return msg
}

func (e *InitializationError) Unwrap() error { return e.Cause }

// NotInitializedError is returned by Manager.Get when lazy initialization fails.
type NotInitializedError struct {
	Cause error
}

func (e *NotInitializedError) Error() string {
	return "configuration not initialized and auto-init failed: " + e.Cause.Error()
}

func (e *NotInitializedError) Unwrap() error { return e.Cause }

// involvesCredential reports whether err was caused by a credential field.
func involvesCredential(err error) bool {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, e := range verrs {
		if isCredentialKey(e.Field) {
			return true
		}
	}
	return false
}
