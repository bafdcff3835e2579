// internal/apperrors/errors.go
package apperrors

import (
	"fmt"
	"net/http"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries a list of field/message pairs and maps to 400.
type ValidationError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// statusError is the shared shape of the fixed-status errors below.
type statusError struct {
	message string
	status  int
}

func (e *statusError) Error() string   { return e.message }
func (e *statusError) StatusCode() int { return e.status }

type NotFoundError struct{ statusError }

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{statusError{
		message: fmt.Sprintf("%s not found", resource),
		status:  http.StatusNotFound,
	}}
}

type ConflictError struct{ statusError }

func NewConflictError(message string) *ConflictError {
	return &ConflictError{statusError{message: message, status: http.StatusConflict}}
}

type UnauthorizedError struct{ statusError }

func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{statusError{message: message, status: http.StatusUnauthorized}}
}

type ForbiddenError struct{ statusError }

func NewForbiddenError(message string) *ForbiddenError {
	if message == "" {
		message = "access denied"
	}
	return &ForbiddenError{statusError{message: message, status: http.StatusForbidden}}
}

// StatusCoder is implemented by every application error.
type StatusCoder interface {
	error
	StatusCode() int
}
