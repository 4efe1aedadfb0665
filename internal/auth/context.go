package auth

import (
	"context"

	"github.com/google/uuid"
)

// Session identifies the authenticated caller for the duration of a request.
type Session struct {
	UserID uuid.UUID
	Email  string
}

// --- Context Helper Functions ---

// GetUserIDFromContext retrieves the UserID (uuid.UUID) from the request context.
// Returns the ID and true if found, otherwise uuid.Nil and false.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetEmailFromContext retrieves the authenticated email from the request context.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// SessionFromContext bundles the caller identity from the request context.
// Returns false when the request carries no authenticated session.
func SessionFromContext(ctx context.Context) (Session, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return Session{}, false
	}
	email, _ := GetEmailFromContext(ctx)
	return Session{UserID: userID, Email: email}, true
}
