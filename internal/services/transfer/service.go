package transfer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"remit/internal/models"
	"remit/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	ledger   repositories.LedgerRepository
	cache    AccountCache
	notifier Notifier
	config   Config
	metrics  MetricsCollector
}

// NewService creates a new transfer engine. The notifier and metrics
// collector are optional; the cache may be nil when reads are uncached.
func NewService(ledger repositories.LedgerRepository, cache AccountCache, notifier Notifier, config Config, metrics MetricsCollector) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	if config.CommissionRate.IsZero() {
		config.CommissionRate = decimal.RequireFromString(DefaultCommissionRate)
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	return &service{
		ledger:   ledger,
		cache:    cache,
		notifier: notifier,
		config:   config,
		metrics:  metrics,
	}
}

// Transfer moves amount from sender to receiver and charges the sender a
// commission on top. It either commits the debit, the credit, and the
// transaction record together, or leaves no trace.
func (s *service) Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal) (*Result, error) {
	start := time.Now()

	result, err := s.execute(ctx, senderID, receiverID, amount)
	if err != nil {
		s.metrics.RecordFailure(failureReason(err))
		return nil, err
	}

	s.metrics.RecordTransfer(result.Transaction.Amount, time.Since(start))
	return result, nil
}

func (s *service) execute(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal) (*Result, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, ErrSelfTransfer
	}

	commission := Commission(amount, s.config.CommissionRate)
	totalDebit := TotalDebit(amount, commission)

	// Fail fast before any lock is taken.
	if _, err := s.ledger.GetAccount(ctx, receiverID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrUnknownReceiver
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	sender, err := s.ledger.GetAccount(ctx, senderID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrUnknownSender
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Optimistic pre-check. Not authoritative: a concurrent debit can still
	// drain the balance before the row lock is held.
	if sender.Balance.LessThan(totalDebit) {
		return nil, ErrInsufficientFunds
	}

	result, err := s.executeAtomic(ctx, senderID, receiverID, amount, commission, totalDebit)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, senderID, receiverID)

	if s.notifier != nil {
		s.notifier.TransferCompleted(result.Transaction, result.SenderBalance, result.ReceiverBalance)
	}

	return result, nil
}

// executeAtomic runs the locked phase, retrying a bounded number of times
// on lock or serialization conflicts. Nothing is committed on failure, so
// every retry starts from a clean slate.
func (s *service) executeAtomic(ctx context.Context, senderID, receiverID uint, amount, commission, totalDebit decimal.Decimal) (*Result, error) {
	var lastErr error

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		result, err := s.attemptAtomic(ctx, senderID, receiverID, amount, commission, totalDebit)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, ErrInsufficientFunds) ||
			errors.Is(err, ErrUnknownSender) ||
			errors.Is(err, ErrUnknownReceiver) {
			return nil, err
		}

		if ctx.Err() != nil {
			// Caller gave up while blocked; nothing was committed.
			return nil, ErrConcurrencyConflict
		}

		if !repositories.IsRetryable(err) {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}

		lastErr = err
		s.metrics.RecordRetry()
		time.Sleep(s.config.RetryBackoff * time.Duration(attempt))
	}

	log.Printf("transfer %d->%d gave up after %d attempts: %v", senderID, receiverID, s.config.MaxAttempts, lastErr)
	return nil, ErrConcurrencyConflict
}

func (s *service) attemptAtomic(ctx context.Context, senderID, receiverID uint, amount, commission, totalDebit decimal.Decimal) (*Result, error) {
	var result *Result

	err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		// Locks are always taken in ascending account-id order, regardless
		// of which row is the sender. Two transfers over the same pair of
		// accounts therefore contend on the same first lock instead of
		// deadlocking.
		firstID, secondID := senderID, receiverID
		if receiverID < senderID {
			firstID, secondID = receiverID, senderID
		}

		first, err := tx.LockAccountForUpdate(ctx, firstID)
		if err != nil {
			return lockError(err, firstID, senderID)
		}
		second, err := tx.LockAccountForUpdate(ctx, secondID)
		if err != nil {
			return lockError(err, secondID, senderID)
		}

		lockedSender, lockedReceiver := first, second
		if lockedSender.ID != senderID {
			lockedSender, lockedReceiver = second, first
		}

		// The authoritative balance check: only this one, made under the
		// sender's row lock, decides whether the transfer goes through.
		if lockedSender.Balance.LessThan(totalDebit) {
			return ErrInsufficientFunds
		}

		if err := tx.AdjustBalance(ctx, senderID, totalDebit.Neg()); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, receiverID, amount); err != nil {
			return err
		}

		record := &models.Transaction{
			Reference:     uuid.NewString(),
			SenderID:      senderID,
			ReceiverID:    receiverID,
			Amount:        amount,
			CommissionFee: commission,
			Status:        models.TransactionStatusCompleted,
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			return err
		}

		result = &Result{
			Transaction:     record,
			SenderBalance:   lockedSender.Balance.Sub(totalDebit),
			ReceiverBalance: lockedReceiver.Balance.Add(amount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) invalidateCaches(ctx context.Context, ids ...uint) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		if err := s.cache.InvalidateAccount(ctx, id); err != nil {
			log.Printf("failed to invalidate account %d cache: %v", id, err)
		}
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Sub-cent precision is rejected rather than silently rounded.
	if !amount.Equal(amount.Truncate(MoneyPrecision)) {
		return ErrInvalidAmount
	}
	return nil
}

func lockError(err error, lockedID, senderID uint) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		if lockedID == senderID {
			return ErrUnknownSender
		}
		return ErrUnknownReceiver
	}
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrUnknownSender):
		return "unknown_sender"
	case errors.Is(err, ErrUnknownReceiver):
		return "unknown_receiver"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrConcurrencyConflict):
		return "concurrency_conflict"
	default:
		return "storage_failure"
	}
}
