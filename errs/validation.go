package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrMaxBodySizeExceeded  = errors.New("request body too large")
	ErrCORSBlocked          = errors.New("origin not allowed")
)

func invalid(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("%s %s", field, reason),
		Field:      field,
	}
}

// NewMalformedPayloadError reports a body that could not be decoded as JSON.
func NewMalformedPayloadError(payload string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("could not decode %s", payload),
		Field:      "payload",
		Cause:      cause,
	}
}

func NewMissingRequiredFieldError(field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    field + " is required",
		Field:      field,
	}
}

// NewInvalidFieldError reads as "<field> <reason>", so reason starts with a verb:
// "must be a UUID", "is not valid base64".
func NewInvalidFieldError(field, reason string) *ApiErr {
	return invalid(field, reason)
}

func NewTooLongError(field string, maxChars int) *ApiErr {
	return invalid(field, fmt.Sprintf("must be at most %d characters", maxChars))
}

func NewOutOfRangeError(field string, min, max int) *ApiErr {
	return invalid(field, fmt.Sprintf("must be between %d and %d", min, max))
}

func NewOneOfError(field string, allowed ...string) *ApiErr {
	return invalid(field, "must be one of "+strings.Join(allowed, ", "))
}

func NewMaxBodySizeExceededError(limit int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("limit is %d bytes", limit),
		Field:      "payload",
	}
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    origin,
	}
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}
