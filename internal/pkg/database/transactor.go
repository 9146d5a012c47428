package database

import "context"

// Transactor runs fn inside a transaction carried by ctx. Repositories called with the
// ctx handed to fn join that transaction. A ctx that already carries a transaction is
// reused, so nested calls commit or roll back with the outermost one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
