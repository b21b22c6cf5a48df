// Package account provides the tenancy scope that every repository call carries.
//
// A Scope cannot be constructed with an empty account id. Repositories take
// a Scope instead of a raw string so that an unscoped query does not compile.
package account

import (
	"context"
	"errors"
	"strings"

	appctx "weavebooks/internal/core/context"
)

// Errors for scope construction.
var (
	ErrEmptyAccount     = errors.New("account: empty account id")
	ErrNoAccountInScope = errors.New("account: no account in context")
)

// Scope identifies the account that owns every record touched by an operation.
type Scope struct {
	id string
}

// NewScope builds a Scope for the given account id.
func NewScope(accountID string) (Scope, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Scope{}, ErrEmptyAccount
	}
	return Scope{id: accountID}, nil
}

// MustScope is NewScope that panics. Use only in tests and wiring code.
func MustScope(accountID string) Scope {
	s, err := NewScope(accountID)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the account id.
func (s Scope) ID() string { return s.id }

// IsZero reports whether the scope was never initialized.
func (s Scope) IsZero() bool { return s.id == "" }

func (s Scope) String() string { return s.id }

type scopeKey struct{}

// WithScope stores the scope in context (background jobs that have no user).
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope of the current request.
// An explicit scope wins over the authenticated user's account.
func FromContext(ctx context.Context) (Scope, error) {
	if s, ok := ctx.Value(scopeKey{}).(Scope); ok && !s.IsZero() {
		return s, nil
	}
	if id := appctx.GetAccountID(ctx); id != "" {
		return NewScope(id)
	}
	return Scope{}, ErrNoAccountInScope
}
