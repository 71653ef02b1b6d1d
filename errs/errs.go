package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// ApiErr is an error that knows which HTTP status it maps to. Field names the
// request field at fault, when there is one.
type ApiErr struct {
	StatusCode int
	err        error
	Details    string
	Field      string
	Cause      error
}

func (e *ApiErr) Error() string {
	if e.Details == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.Details
}

// Unwrap exposes the sentinel so errors.Is works on an *ApiErr.
func (e *ApiErr) Unwrap() error {
	return e.err
}

// GetFullError renders the error followed by its chain of causes, e.g.
// "failed to store image -> upload failed -> connection reset".
func (e *ApiErr) GetFullError() string {
	if e.Cause == nil {
		return e.Error()
	}
	var next *ApiErr
	if errors.As(e.Cause, &next) {
		return e.Error() + " -> " + next.GetFullError()
	}
	return e.Error() + " -> " + e.Cause.Error()
}

// StatusOf returns the status err is written with; anything that is not an
// *ApiErr is a 500.
func StatusOf(err error) int {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// NewNotFoundError reports a missing entity, e.g. "conversation: not found".
func NewNotFoundError(entity string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: fmt.Errorf("%s: %w", entity, ErrNotFound)}
}

func NewInternalError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: errors.New(message)}
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	e := NewInternalError(message)
	e.Cause = cause
	return e
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
