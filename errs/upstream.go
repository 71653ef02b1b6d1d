package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Failures of the AI provider and other outbound integrations.
var (
	ErrRateLimitExceeded      = errors.New("rate limit exceeded")
	ErrModelOverloaded        = errors.New("model overloaded")
	ErrContentPolicyViolation = errors.New("content blocked")
	ErrInvalidAPIKey          = errors.New("provider rejected credentials")
	ErrServiceNotConfigured   = errors.New("service not configured")
	ErrTimeout                = errors.New("provider timed out")
	ErrUpstream               = errors.New("provider request failed")
)

func upstream(status int, sentinel error, details string, cause error) *ApiErr {
	return &ApiErr{StatusCode: status, err: sentinel, Details: details, Cause: cause}
}

func NewRateLimitError(service string, cause error) *ApiErr {
	return upstream(http.StatusTooManyRequests, ErrRateLimitExceeded,
		service+" quota exhausted, retry later", cause)
}

func NewModelOverloadedError(service string, cause error) *ApiErr {
	return upstream(http.StatusServiceUnavailable, ErrModelOverloaded,
		service+" is temporarily overloaded", cause)
}

// NewContentPolicyError is a 400: the prompt, not the server, was the problem.
func NewContentPolicyError(service, reason string) *ApiErr {
	e := upstream(http.StatusBadRequest, ErrContentPolicyViolation, fmt.Sprintf("%s: %s", service, reason), nil)
	e.Field = "prompt"
	return e
}

func NewInvalidAPIKeyError(service string, cause error) *ApiErr {
	return upstream(http.StatusBadGateway, ErrInvalidAPIKey, service, cause)
}

// NewServiceNotConfiguredError marks an integration whose credentials were
// never provided. Details is always "<service> service not configured".
func NewServiceNotConfiguredError(service string) *ApiErr {
	return upstream(http.StatusServiceUnavailable, ErrServiceNotConfigured,
		service+" service not configured", nil)
}

func NewUpstreamTimeoutError(service string, cause error) *ApiErr {
	return upstream(http.StatusGatewayTimeout, ErrTimeout, service, cause)
}

func NewUpstreamError(service string, cause error) *ApiErr {
	return upstream(http.StatusBadGateway, ErrUpstream, service, cause)
}

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

func IsServiceNotConfiguredError(err error) bool {
	return errors.Is(err, ErrServiceNotConfigured)
}
