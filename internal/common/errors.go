package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Compliance pipeline errors
var (
	// ErrUnknownDocumentType signals caller misuse: the type is not in the rule catalog.
	ErrUnknownDocumentType = errors.New("unknown document type")
	// ErrInputRejected marks a file that failed format or size validation.
	ErrInputRejected = errors.New("input rejected")
	// ErrAnalyzerUnavailable means no AI credential is configured.
	ErrAnalyzerUnavailable = errors.New("compliance analyzer unavailable")
	// ErrAnalyzerUnreachable covers transport, auth and timeout failures talking to the model.
	ErrAnalyzerUnreachable = errors.New("compliance analyzer unreachable")
	// ErrMalformedReply means the model answered but no usable verdict JSON was found.
	ErrMalformedReply = errors.New("malformed analyzer reply")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode returns the AppError code found in err's chain, or "" when there is none.
func ErrorCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
