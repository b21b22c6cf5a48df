// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"errors"

	"weavebooks/internal/core/account"
)

// ErrNotInitialized is returned by Counter.Next when no counter record exists
// yet for the key. The caller seeds it from document history with Init.
var ErrNotInitialized = errors.New("numerator: counter not initialized")

// Counter is a per-account, per-key atomic counter.
type Counter interface {
	// Next atomically increments the counter and returns the new value.
	Next(ctx context.Context, scope account.Scope, key string) (int64, error)

	// Init creates the counter with the given current value if it does not exist.
	// An existing counter is left untouched.
	Init(ctx context.Context, scope account.Scope, key string, value int64) error
}
