package repositories

import (
	"context"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository is the durable, lockable store of account balances and
// transaction records.
type LedgerRepository interface {
	// GetAccount reads an account without locking it. The returned balance
	// may be stale by the time the caller acts on it.
	GetAccount(ctx context.Context, id uint) (*models.Account, error)

	// LockAccountForUpdate acquires an exclusive, transaction-scoped lock on
	// the account row and returns its current state. Concurrent lockers of
	// the same row block until the holder's transaction ends. Only valid
	// inside ExecuteInTransaction.
	LockAccountForUpdate(ctx context.Context, id uint) (*models.Account, error)

	// AdjustBalance applies balance += delta. The caller must hold the row
	// lock for id; outside a transaction the call fails.
	AdjustBalance(ctx context.Context, id uint, delta decimal.Decimal) error

	// GetBalance reads the committed balance of an account.
	GetBalance(ctx context.Context, id uint) (decimal.Decimal, error)

	// CreateTransaction appends a transaction record, assigning its
	// identifier and timestamps.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// FindTransactionsForAccount returns every record in which the account
	// appears as sender or receiver, newest first.
	FindTransactionsForAccount(ctx context.Context, id uint) ([]models.Transaction, error)

	// ExecuteInTransaction runs fn against a repository bound to a single
	// database transaction. fn returning an error rolls everything back.
	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error
}
