// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on a database driver.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// The postgres implementation uses a real transaction. Stores without
// multi-document transactions run fn under a compensation journal (see
// CompensatingManager), so a failing fn leaves no partial side effects.
type Manager interface {
	// RunInTransaction executes fn as one unit of work.
	// If fn returns an error, all its writes are undone.
	//
	// Nested calls reuse the existing unit of work from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
