package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserContext holds the authenticated principal for a request. It is
// threaded through context so the acting identity is available wherever a
// record gets attributed ownership or a comment gets an author.
type UserContext struct {
	UserID      uuid.UUID
	Username    string
	DisplayName string
	Email       string
	IsSystem    bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}
