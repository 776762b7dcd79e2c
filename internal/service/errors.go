package service

import (
	"errors"
	"fmt"
)

// Taxonomia de errores del servicio. Los handlers HTTP mapean cada
// sentinela a un status; nada se reintenta automaticamente.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrLimitExceeded   = errors.New("limit exceeded")
)

// FieldError nombra el campo que fallo la validacion; envuelve
// ErrMissingField o ErrInvalidFormat para errors.Is.
type FieldError struct {
	Field  string
	Reason error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Reason
}

func missingField(field string) error {
	return &FieldError{Field: field, Reason: ErrMissingField}
}

func invalidFormat(field string) error {
	return &FieldError{Field: field, Reason: ErrInvalidFormat}
}
