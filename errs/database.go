package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database unavailable")
	ErrDatabaseTimeout    = errors.New("database timeout")
)

// Driver messages for constraint and connection failures. Postgres and
// sqlite phrase them differently, and gorm only translates some of them.
var (
	duplicateMarkers  = []string{"duplicate key", "unique constraint"}
	foreignKeyMarkers = []string{"foreign key constraint"}
	connectionMarkers = []string{"connection refused", "failed to connect", "database is closed"}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// NewDatabaseError classifies a repository error for entity. operation is a
// verb ("find", "create") used in Details. An *ApiErr cause is returned as is.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    fmt.Sprintf("could not %s %s", operation, entity),
		Cause:      cause,
	}
	if cause == nil {
		return e
	}

	msg := strings.ToLower(cause.Error())
	switch {
	case errors.Is(cause, gorm.ErrRecordNotFound):
		e.StatusCode, e.err = http.StatusNotFound, fmt.Errorf("%s %w", entity, ErrNotFound)
	case errors.Is(cause, gorm.ErrDuplicatedKey), containsAny(msg, duplicateMarkers):
		e.StatusCode, e.err = http.StatusConflict, fmt.Errorf("%s %w", entity, ErrAlreadyExists)
	case errors.Is(cause, gorm.ErrForeignKeyViolated), containsAny(msg, foreignKeyMarkers):
		e.StatusCode, e.err = http.StatusBadRequest, fmt.Errorf("%s: %w", entity, ErrInvalidReference)
		e.Details = "referenced record does not exist"
	case errors.Is(cause, context.DeadlineExceeded):
		e.StatusCode, e.err = http.StatusGatewayTimeout, ErrDatabaseTimeout
	case containsAny(msg, connectionMarkers):
		e.StatusCode, e.err = http.StatusServiceUnavailable, ErrDatabaseConnection
	}
	return e
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
