package service

import (
	"errors"
	"strings"
)

var (
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("this email is already registered")
	// ErrEmailNotRegistered is returned when logging in with an unknown email.
	ErrEmailNotRegistered = errors.New("this email is not registered")
	// ErrPasswordIncorrect is returned when the supplied password does not match the stored digest.
	ErrPasswordIncorrect = errors.New("password incorrect")
	// ErrTaskNotFound is returned for a task id that does not resolve within the caller's scope.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when an authenticated user id no longer resolves.
	ErrUserNotFound = errors.New("user not found")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"path"`
	Message string `json:"msg"`
}

// ValidationError aggregates field-level failures for one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the first field message, matching the single-message
// error envelope used by the task endpoints.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	return e.Fields[0].Message
}

func validationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
