// Package errors provides structured error types for the exporter.
//
// This package separates the two failure channels of an export:
//   - Fatal errors (*Error with a file/path code, *ExportError) abort the
//     whole invocation and are returned to the caller after teardown
//   - Recoverable conditions never reach this package; the exporter turns
//     them into warning/error messages inside the document
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NO_SCENE, CROSS_VOLUME, PERMISSION, PATH, WRITE: fatal file errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown object type: %s", typ)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePermission, origErr, "Permission denied")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Fatal export file errors
	ErrCodeNoScene     Code = "NO_SCENE"
	ErrCodeCrossVolume Code = "CROSS_VOLUME"
	ErrCodePermission  Code = "PERMISSION"
	ErrCodePath        Code = "PATH"
	ErrCodeWrite       Code = "WRITE"

	// Export errors
	ErrCodeExport   Code = "EXPORT"
	ErrCodeStrict   Code = "STRICT"
	ErrCodeMaterial Code = "MATERIAL" // recovered by replacing the material

	// Infrastructure errors
	ErrCodeCache       Code = "CACHE"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		return ErrCodeExport
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatalFile reports whether err is one of the file errors that abort an
// export: no scene, cross-volume output, an output that could not be
// written or an unresolvable resource path.
func IsFatalFile(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoScene, ErrCodeCrossVolume, ErrCodePermission, ErrCodePath, ErrCodeWrite:
		return true
	}
	return false
}

// ExportError is a fatal error raised while processing one named component.
// It carries enough context to point the user at the offending entity.
type ExportError struct {
	Component     string // Component name, e.g. object or particle settings name
	ComponentType string // Component kind, e.g. "Object" or "ParticleSettings"
	Message       string
	Comment       string // Optional free-text hint
}

// NewExportError creates an ExportError for the given component.
func NewExportError(message, component, componentType, comment string) *ExportError {
	return &ExportError{
		Component:     component,
		ComponentType: componentType,
		Message:       message,
		Comment:       comment,
	}
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return "Export error: " + e.Component + ": " + e.Message
}
