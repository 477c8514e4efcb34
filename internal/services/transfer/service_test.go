package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"remit/internal/models"
	"remit/internal/repositories"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory LedgerRepository with real row-lock
// semantics: LockAccountForUpdate blocks on a per-account mutex held until
// the transaction finishes, and balance mutations stage until commit.
type fakeLedger struct {
	mu       sync.Mutex
	accounts map[uint]*models.Account
	rowLocks map[uint]*sync.Mutex
	txs      []models.Transaction
	nextID   uint

	// inflate overrides balances seen by unlocked reads, to simulate a
	// stale optimistic pre-check.
	inflate map[uint]decimal.Decimal
	// lockErrs are popped and returned by LockAccountForUpdate before any
	// lock is taken, to inject storage failures.
	lockErrs []error

	getAccountCalls int
}

func newFakeLedger(balances map[uint]string) *fakeLedger {
	f := &fakeLedger{
		accounts: make(map[uint]*models.Account),
		rowLocks: make(map[uint]*sync.Mutex),
		inflate:  make(map[uint]decimal.Decimal),
	}
	for id, balance := range balances {
		f.accounts[id] = &models.Account{
			ID:      id,
			Balance: decimal.RequireFromString(balance),
			Status:  models.AccountStatusActive,
		}
	}
	return f
}

func (f *fakeLedger) GetAccount(_ context.Context, id uint) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getAccountCalls++
	account, ok := f.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	snapshot := *account
	if inflated, ok := f.inflate[id]; ok {
		snapshot.Balance = inflated
	}
	return &snapshot, nil
}

func (f *fakeLedger) GetBalance(ctx context.Context, id uint) (decimal.Decimal, error) {
	account, err := f.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (f *fakeLedger) LockAccountForUpdate(context.Context, uint) (*models.Account, error) {
	return nil, repositories.ErrNoActiveTransaction
}

func (f *fakeLedger) AdjustBalance(context.Context, uint, decimal.Decimal) error {
	return repositories.ErrNoActiveTransaction
}

func (f *fakeLedger) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tx.ID = f.nextID
	tx.CreatedAt = time.Now()
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeLedger) FindTransactionsForAccount(_ context.Context, id uint) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for i := len(f.txs) - 1; i >= 0; i-- {
		if f.txs[i].SenderID == id || f.txs[i].ReceiverID == id {
			out = append(out, f.txs[i])
		}
	}
	return out, nil
}

func (f *fakeLedger) ExecuteInTransaction(_ context.Context, fn func(repositories.LedgerRepository) error) error {
	tx := &fakeTx{ledger: f, deltas: make(map[uint]decimal.Decimal)}
	err := fn(tx)
	tx.finish(err == nil)
	return err
}

func (f *fakeLedger) rowLock(id uint) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rowLocks[id] == nil {
		f.rowLocks[id] = &sync.Mutex{}
	}
	return f.rowLocks[id]
}

func (f *fakeLedger) popLockErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lockErrs) == 0 {
		return nil
	}
	err := f.lockErrs[0]
	f.lockErrs = f.lockErrs[1:]
	return err
}

func (f *fakeLedger) balance(t *testing.T, id uint) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id].Balance.StringFixed(2)
}

func (f *fakeLedger) transactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.txs)
}

type fakeTx struct {
	ledger  *fakeLedger
	locked  []uint
	deltas  map[uint]decimal.Decimal
	records []models.Transaction
}

func (t *fakeTx) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	return t.ledger.GetAccount(ctx, id)
}

func (t *fakeTx) GetBalance(ctx context.Context, id uint) (decimal.Decimal, error) {
	return t.ledger.GetBalance(ctx, id)
}

func (t *fakeTx) LockAccountForUpdate(_ context.Context, id uint) (*models.Account, error) {
	if err := t.ledger.popLockErr(); err != nil {
		return nil, err
	}

	lock := t.ledger.rowLock(id)
	lock.Lock()
	t.locked = append(t.locked, id)

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	account, ok := t.ledger.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	snapshot := *account
	return &snapshot, nil
}

func (t *fakeTx) AdjustBalance(_ context.Context, id uint, delta decimal.Decimal) error {
	held := false
	for _, lockedID := range t.locked {
		if lockedID == id {
			held = true
			break
		}
	}
	if !held {
		return errors.New("balance adjusted without row lock")
	}
	t.deltas[id] = t.deltas[id].Add(delta)
	return nil
}

func (t *fakeTx) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	t.ledger.mu.Lock()
	t.ledger.nextID++
	tx.ID = t.ledger.nextID
	t.ledger.mu.Unlock()
	tx.CreatedAt = time.Now()
	t.records = append(t.records, *tx)
	return nil
}

func (t *fakeTx) FindTransactionsForAccount(ctx context.Context, id uint) ([]models.Transaction, error) {
	return t.ledger.FindTransactionsForAccount(ctx, id)
}

func (t *fakeTx) ExecuteInTransaction(context.Context, func(repositories.LedgerRepository) error) error {
	return errors.New("nested transactions not supported")
}

// finish commits or discards the staged mutations and releases every row
// lock in reverse acquisition order.
func (t *fakeTx) finish(commit bool) {
	t.ledger.mu.Lock()
	if commit {
		for id, delta := range t.deltas {
			t.ledger.accounts[id].Balance = t.ledger.accounts[id].Balance.Add(delta)
		}
		t.ledger.txs = append(t.ledger.txs, t.records...)
	}
	t.ledger.mu.Unlock()

	for i := len(t.locked) - 1; i >= 0; i-- {
		t.ledger.rowLock(t.locked[i]).Unlock()
	}
	t.locked = nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []TransferCompletedCall
}

type TransferCompletedCall struct {
	Transaction     *models.Transaction
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

func (n *recordingNotifier) TransferCompleted(tx *models.Transaction, senderBalance, receiverBalance decimal.Decimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, TransferCompletedCall{tx, senderBalance, receiverBalance})
}

func (n *recordingNotifier) calls() []TransferCompletedCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]TransferCompletedCall(nil), n.events...)
}

type recordingMetrics struct {
	mu       sync.Mutex
	retries  int
	failures []string
}

func (m *recordingMetrics) RecordTransfer(decimal.Decimal, time.Duration) {}

func (m *recordingMetrics) RecordFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
}

func (m *recordingMetrics) RecordRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() Config {
	return Config{RetryBackoff: time.Millisecond}
}

func TestTransfer_Validation(t *testing.T) {
	tests := []struct {
		name       string
		senderID   uint
		receiverID uint
		amount     string
		wantErr    error
	}{
		{"zero amount", 1, 2, "0.00", ErrInvalidAmount},
		{"negative amount", 1, 2, "-5.00", ErrInvalidAmount},
		{"sub-cent precision", 1, 2, "10.005", ErrInvalidAmount},
		{"self transfer", 1, 1, "10.00", ErrSelfTransfer},
		{"unknown receiver", 1, 99, "10.00", ErrUnknownReceiver},
		{"unknown sender", 99, 2, "10.00", ErrUnknownSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger(map[uint]string{1: "1000.00", 2: "500.00"})
			svc := NewService(ledger, nil, nil, testConfig(), nil)

			_, err := svc.Transfer(context.Background(), tt.senderID, tt.receiverID, amt(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, ledger.transactionCount())
			assert.Equal(t, "1000.00", ledger.balance(t, 1))
			assert.Equal(t, "500.00", ledger.balance(t, 2))
		})
	}
}

func TestTransfer_SelfTransferNeverTouchesStorage(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "1000.00"})
	svc := NewService(ledger, nil, nil, testConfig(), nil)

	_, err := svc.Transfer(context.Background(), 1, 1, amt("10.00"))
	assert.ErrorIs(t, err, ErrSelfTransfer)
	assert.Equal(t, 0, ledger.getAccountCalls)
}

func TestTransfer_Success(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "1000.00", 2: "500.00"})
	notifier := &recordingNotifier{}
	svc := NewService(ledger, nil, notifier, testConfig(), nil)

	result, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	require.NoError(t, err)

	assert.Equal(t, "898.50", ledger.balance(t, 1))
	assert.Equal(t, "600.00", ledger.balance(t, 2))
	assert.Equal(t, "898.50", result.SenderBalance.StringFixed(2))
	assert.Equal(t, "600.00", result.ReceiverBalance.StringFixed(2))

	record := result.Transaction
	assert.Equal(t, uint(1), record.SenderID)
	assert.Equal(t, uint(2), record.ReceiverID)
	assert.Equal(t, "100.00", record.Amount.StringFixed(2))
	assert.Equal(t, "1.50", record.CommissionFee.StringFixed(2))
	assert.Equal(t, "101.50", record.TotalDebited().StringFixed(2))
	assert.Equal(t, models.TransactionStatusCompleted, record.Status)
	assert.NotEmpty(t, record.Reference)
	assert.Equal(t, 1, ledger.transactionCount())

	calls := notifier.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, record.Reference, calls[0].Transaction.Reference)
	assert.Equal(t, "898.50", calls[0].SenderBalance.StringFixed(2))
	assert.Equal(t, "600.00", calls[0].ReceiverBalance.StringFixed(2))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "10.00", 2: "500.00"})
	notifier := &recordingNotifier{}
	svc := NewService(ledger, nil, notifier, testConfig(), nil)

	_, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "10.00", ledger.balance(t, 1))
	assert.Equal(t, "500.00", ledger.balance(t, 2))
	assert.Equal(t, 0, ledger.transactionCount())
	assert.Empty(t, notifier.calls())
}

func TestTransfer_InsufficientFundsUnderLock(t *testing.T) {
	// The unlocked pre-check sees an inflated balance; only the
	// authoritative check under the row lock rejects the transfer.
	ledger := newFakeLedger(map[uint]string{1: "10.00", 2: "500.00"})
	ledger.inflate[1] = amt("1000.00")
	svc := NewService(ledger, nil, nil, testConfig(), nil)

	_, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "10.00", ledger.balance(t, 1))
	assert.Equal(t, "500.00", ledger.balance(t, 2))
	assert.Equal(t, 0, ledger.transactionCount())
}

func TestTransfer_RetriesOnConflict(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "1000.00", 2: "500.00"})
	ledger.lockErrs = []error{&pgconn.PgError{Code: "40001"}}
	metrics := &recordingMetrics{}
	svc := NewService(ledger, nil, nil, testConfig(), metrics)

	result, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	require.NoError(t, err)
	assert.Equal(t, "898.50", result.SenderBalance.StringFixed(2))
	assert.Equal(t, 1, metrics.retries)
}

func TestTransfer_ConflictAfterAllAttempts(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "1000.00", 2: "500.00"})
	ledger.lockErrs = []error{
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40P01"},
		&pgconn.PgError{Code: "55P03"},
	}
	metrics := &recordingMetrics{}
	svc := NewService(ledger, nil, nil, testConfig(), metrics)

	_, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, "1000.00", ledger.balance(t, 1))
	assert.Equal(t, 0, ledger.transactionCount())
	assert.Equal(t, []string{"concurrency_conflict"}, metrics.failures)
}

func TestTransfer_StorageFailureNotRetried(t *testing.T) {
	ledger := newFakeLedger(map[uint]string{1: "1000.00", 2: "500.00"})
	ledger.lockErrs = []error{errors.New("connection reset")}
	metrics := &recordingMetrics{}
	svc := NewService(ledger, nil, nil, testConfig(), metrics)

	_, err := svc.Transfer(context.Background(), 1, 2, amt("100.00"))
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Equal(t, 0, metrics.retries)
	assert.Equal(t, "1000.00", ledger.balance(t, 1))
	assert.Equal(t, 0, ledger.transactionCount())
}
