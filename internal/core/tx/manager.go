// Package tx defines the transaction contract domain services depend on.
// The implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a database transaction.
// An error returned by fn rolls the transaction back; nested calls reuse the
// transaction already stored in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Nop runs fn directly without a transaction. Used by tests with in-memory repositories.
type Nop struct{}

// RunInTransaction implements Manager.
func (Nop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
