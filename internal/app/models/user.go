package models

import (
	"context"
	"telehealth-service/internal/pkg/constvars"
	"time"
)

// UserContext is the authenticated caller, built from verified token claims.
type UserContext struct {
	ID         string
	Email      string
	Name       string
	Role       string
	ResourceID string
	TokenID    string
	ExpiresAt  time.Time
}

func ContextWithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, constvars.CONTEXT_USER_KEY, user)
}

func UserFromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(constvars.CONTEXT_USER_KEY).(*UserContext)
	return user, ok && user != nil
}
