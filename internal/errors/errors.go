// Package errors provides a lightweight structured error type (TypdocsError)
// for category-based classification across the conversion pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a typdocs error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryGit       ErrorCategory = "git"
	CategoryToolchain ErrorCategory = "toolchain"
	CategoryBuild     ErrorCategory = "build"

	// Conversion and processing errors
	CategoryParse      ErrorCategory = "parse"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryState    ErrorCategory = "state"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// TypdocsError is a structured error with category, severity, and context
type TypdocsError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TypdocsError
type ContextFields map[string]any

// Error implements the error interface
func (e *TypdocsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TypdocsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TypdocsError) WithContext(key string, value any) *TypdocsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TypdocsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TypdocsError {
	return &TypdocsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TypdocsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TypdocsError {
	return &TypdocsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapError wraps an existing error with severity defaulted to error
func WrapError(err error, category ErrorCategory, message string) *TypdocsError {
	return &TypdocsError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if te, ok := err.(*TypdocsError); ok {
		return te.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TypdocsError
func GetCategory(err error) ErrorCategory {
	if te, ok := err.(*TypdocsError); ok {
		return te.Category
	}
	return CategoryInternal
}
