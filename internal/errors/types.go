package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeResolution ErrorType = "resolution"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeMCP        ErrorType = "mcp"
)

// CalloutError represents a structured error with context
type CalloutError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *CalloutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping
func (e *CalloutError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CalloutError of the same type
func (e *CalloutError) Is(target error) bool {
	if targetErr, ok := target.(*CalloutError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *CalloutError) WithContext(key string, value interface{}) *CalloutError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new CalloutError
func New(errType ErrorType, message string) *CalloutError {
	return &CalloutError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *CalloutError {
	return &CalloutError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *CalloutError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// Newf creates a new CalloutError with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *CalloutError {
	return New(errType, fmt.Sprintf(format, args...))
}

// IsType reports whether any error in err's chain is a CalloutError of errType
func IsType(err error, errType ErrorType) bool {
	var cErr *CalloutError
	for err != nil {
		if !stderrors.As(err, &cErr) {
			return false
		}
		if cErr.Type == errType {
			return true
		}
		err = cErr.Cause
	}
	return false
}

// GetType returns the error type, or ErrorTypeInternal if not a CalloutError
func GetType(err error) ErrorType {
	var cErr *CalloutError
	if stderrors.As(err, &cErr) {
		return cErr.Type
	}
	return ErrorTypeInternal
}

// GetContext returns context information from the error
func GetContext(err error) map[string]interface{} {
	var cErr *CalloutError
	if stderrors.As(err, &cErr) {
		return cErr.Context
	}
	return nil
}
