package repository

import "context"

// Transactor runs fn inside a database transaction. Repository calls made with
// the context handed to fn join that transaction; returning an error rolls it back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
