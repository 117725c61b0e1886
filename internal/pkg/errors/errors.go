// Package errors provides the structured application error used across
// AgroPlan's use cases and HTTP layer.
//
// Import as apperrors to avoid shadowing the standard library package.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error use cases return for conditions a client can act
// on. ErrorHandler renders it; any other error becomes a 500.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`

	// Params carries structured diagnostics, such as allocation quantities,
	// that clients render next to the message.
	Params map[string]interface{} `json:"params,omitempty"`

	FieldErrors []FieldError `json:"field_errors,omitempty"`

	Err error `json:"-"`
}

// FieldError names one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Wrap keeps err as the cause of a client-facing error.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// WithParams sets Params unless params is empty.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e != nil && len(params) > 0 {
		e.Params = params
	}
	return e
}

// WithFieldErrors sets FieldErrors unless fieldErrors is empty.
func (e *AppError) WithFieldErrors(fieldErrors []FieldError) *AppError {
	if e != nil && len(fieldErrors) > 0 {
		e.FieldErrors = fieldErrors
	}
	return e
}

func withStatus(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NotFound(code, message string) *AppError { return withStatus(http.StatusNotFound, code, message) }

func BadRequest(code, message string) *AppError {
	return withStatus(http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *AppError {
	return withStatus(http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *AppError { return withStatus(http.StatusForbidden, code, message) }

func Conflict(code, message string) *AppError { return withStatus(http.StatusConflict, code, message) }

// IsAppError finds an AppError anywhere in err's chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}
