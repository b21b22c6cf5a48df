// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext is the authenticated caller, taken from the bearer token.
// AccountID scopes every repository call of the request.
type UserContext struct {
	UserID    string
	AccountID string
	Email     string
	Plan      string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetAccountID returns account ID of the caller or empty string.
func GetAccountID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.AccountID
	}
	return ""
}
