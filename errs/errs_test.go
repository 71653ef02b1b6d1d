package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		is     error
	}{
		{"record not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), http.StatusNotFound, ErrNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, http.StatusConflict, ErrAlreadyExists},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "users_username_key"`), http.StatusConflict, ErrAlreadyExists},
		{"sqlite duplicate", errors.New("UNIQUE constraint failed: tags.name"), http.StatusConflict, ErrAlreadyExists},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), http.StatusBadRequest, ErrInvalidReference},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrDatabaseTimeout},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"generic", errors.New("syntax error"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "user", tt.cause)

			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.cause, err.Cause)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestNewDatabaseErrorPassesApiErrThrough(t *testing.T) {
	original := NewNotFoundError("blog post")

	assert.Same(t, original, NewDatabaseError("find", "blog_post", original))
}

func TestValidationMessages(t *testing.T) {
	tests := []struct {
		err   *ApiErr
		field string
		msg   string
	}{
		{NewOutOfRangeError("limit", 1, 100), "limit", "invalid field: limit must be between 1 and 100"},
		{NewTooLongError("q", 200), "q", "invalid field: q must be at most 200 characters"},
		{NewOneOfError("mode", "encode", "decode"), "mode", "invalid field: mode must be one of encode, decode"},
		{NewMissingRequiredFieldError("title"), "title", "missing required field: title is required"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.msg, tt.err.Error())
		assert.Equal(t, tt.field, tt.err.Field)
		assert.Equal(t, http.StatusBadRequest, StatusOf(tt.err))
	}
	assert.True(t, IsInvalidFieldError(NewTooLongError("q", 1)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	inner := NewInternalErrorWithCause("inner", errors.New("disk"))
	outer := NewInternalErrorWithCause("outer", inner)

	assert.Equal(t, "outer -> inner -> disk", outer.GetFullError())
	assert.Equal(t, "plain", NewInternalError("plain").GetFullError())
}

func TestModerationErrors(t *testing.T) {
	err := NewNotModeratableError("published")
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.True(t, IsConflict(err))
	assert.ErrorIs(t, err, ErrNotModeratable)
	assert.Contains(t, err.Error(), "current status is published")

	assert.True(t, IsForbidden(NewNotAuthorError()))
	assert.True(t, IsForbidden(NewPostLockedError()))
	assert.ErrorIs(t, NewPostLockedError(), ErrPostLocked)
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("post")))
	assert.True(t, IsUnauthorized(NewMissingTokenError()))
	assert.True(t, IsUnauthorized(NewInvalidCredentialsError()))
	assert.True(t, IsForbidden(NewInsufficientRoleError("admin")))
	assert.True(t, IsInsufficientRoleError(NewInsufficientRoleError("admin")))
	assert.True(t, IsRateLimitError(NewRateLimitError("Gemini", nil)))
	assert.True(t, IsServiceNotConfiguredError(NewServiceNotConfiguredError("Gemini")))
	assert.Equal(t, "AI service not configured", NewServiceNotConfiguredError("AI").Details)
}
