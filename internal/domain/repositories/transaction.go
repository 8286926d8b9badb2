package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. Multi-record
// structural mutations (cascading delete, cascading restore, position
// assignment) must run through ExecTx so they commit or roll back as a
// unit.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
