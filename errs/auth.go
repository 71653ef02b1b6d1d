package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingToken       = errors.New("not signed in")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInsufficientRole   = errors.New("insufficient role")

	// Blog moderation
	ErrNotAuthor      = errors.New("not the author")
	ErrPostLocked     = errors.New("post is published")
	ErrNotModeratable = errors.New("post is not pending")
)

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Field:      "session",
	}
}

func NewInvalidCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials),
	}
}

func NewInsufficientRoleError(required string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrInsufficientRole),
		Details:    required + " role required",
		Field:      "role",
	}
}

// NewNotAuthorError is returned when an editor touches someone else's post.
func NewNotAuthorError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrNotAuthor),
		Details:    "only the author or an admin can change this post",
	}
}

func NewPostLockedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrPostLocked),
		Details:    "published posts can only be edited by an admin",
	}
}

// NewNotModeratableError is the conflict raised when approve or reject hits a
// post whose status is no longer pending.
func NewNotModeratableError(status string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%w: %w", ErrConflict, ErrNotModeratable),
		Details:    "current status is " + status,
	}
}

func IsInsufficientRoleError(err error) bool {
	return errors.Is(err, ErrInsufficientRole)
}
