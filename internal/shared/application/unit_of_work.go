// Package application holds the use-case contracts shared by the meetings
// and reminders contexts.
package application

import "context"

// UnitOfWork scopes a group of repository calls to one transaction. The
// campaign path depends on this: the meeting row and its reminder batch
// commit together or not at all. Begin returns a context carrying the
// transaction; repositories pick it up from there, and a nested Begin joins
// the ambient transaction rather than opening a second one.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn inside a transaction, committing on nil and rolling
// back on error.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
