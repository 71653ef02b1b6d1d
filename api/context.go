package api

import (
	"context"

	"github.com/markoai/marko-backend/models"
)

type keyType string

const (
	userKey      keyType = "user"
	sessionIDKey keyType = "sessionID"
)

// ctxWithSession stores the signed-in user and its session ID
func ctxWithSession(ctx context.Context, user *models.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ctxGetUser returns the signed-in user, or nil for anonymous requests
func ctxGetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func ctxGetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// isStaff reports whether user may see unpublished content.
func isStaff(user *models.User) bool {
	return user != nil
}

func isAdmin(user *models.User) bool {
	return user != nil && user.IsAdmin()
}
