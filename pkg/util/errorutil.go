package util

import (
	"errors"
	"fmt"
)

// Error codes used across the issuer.
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeSigningFailed    = "SIGNING_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

// NewConfigError reports misconfigured fields. fields lists the setting names to fix.
func NewConfigError(message string, fields []string, location string) error {
	return NewDomainError(CodeConfigInvalid, message, map[string]any{
		"fields":   fields,
		"location": location,
	})
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, details)
}

func NewSigningError(err error) error {
	return &DomainError{
		Code:    CodeSigningFailed,
		Message: "failed to sign user signature",
		Err:     err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{Code: CodeInternal, Message: "internal error", Err: err}
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	de := ToDomainError(err)
	return de != nil && de.Code == code
}
