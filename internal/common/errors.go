package common

import "net/http"

// AppError carries an error code and HTTP status alongside the message so
// handlers can map domain failures onto the canonical error payload.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Invalid builds the 400 INVALID_INPUT error returned for rejected request
// fields.
func Invalid(message string) *AppError {
	return NewAppError("INVALID_INPUT", message, http.StatusBadRequest, nil)
}

// Unauthorized builds the 401 UNAUTHORIZED error used by the auth layer. The
// wrapped error stays server side; clients only see the message.
func Unauthorized(message string, err error) *AppError {
	return NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized, err)
}
