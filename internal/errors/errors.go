// Package errors provides the structured error type (DocPipeError) used for
// category-based classification across the pipeline and CLI.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a DocPipe error for classification
type ErrorCategory string

const (
	// Pipeline configuration and input errors
	CategoryConfig ErrorCategory = "config"

	// Markdown preprocessing errors
	CategoryScan      ErrorCategory = "scan"
	CategoryTag       ErrorCategory = "tag"
	CategoryAnchor    ErrorCategory = "anchor"
	CategoryReference ErrorCategory = "reference"

	// Execution errors
	CategoryAction     ErrorCategory = "action"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// DocPipeError is a structured error with category, severity, and context
type DocPipeError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DocPipeError
type ContextFields map[string]any

// Error implements the error interface
func (e *DocPipeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DocPipeError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DocPipeError) WithContext(key string, value any) *DocPipeError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DocPipeError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DocPipeError {
	return &DocPipeError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new DocPipeError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocPipeError {
	return &DocPipeError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category anywhere in its chain
func IsCategory(err error, category ErrorCategory) bool {
	var dpe *DocPipeError
	if errors.As(err, &dpe) {
		return dpe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if the chain contains no DocPipeError
func GetCategory(err error) ErrorCategory {
	var dpe *DocPipeError
	if errors.As(err, &dpe) {
		return dpe.Category
	}
	return CategoryInternal
}
