// Package history is the read side of the ledger: current balance plus the
// transaction log of an account. It never locks rows and never mutates.
package history

import (
	"context"
	"errors"
	"fmt"
	"log"

	"remit/internal/models"
	"remit/internal/repositories"

	"github.com/shopspring/decimal"
)

var ErrUnknownAccount = errors.New("account not found")

// AccountCache serves account snapshots ahead of the ledger.
type AccountCache interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	CacheAccount(ctx context.Context, account *models.Account) error
}

// Statement is an account's balance and its transaction log, newest first.
type Statement struct {
	AccountID    uint                 `json:"account_id"`
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []models.Transaction `json:"transactions"`
}

// Service serves read-only account statements.
type Service interface {
	GetHistory(ctx context.Context, accountID uint) (*Statement, error)
}

type service struct {
	ledger repositories.LedgerRepository
	cache  AccountCache
}

// NewService creates a new history service. The cache is optional.
func NewService(ledger repositories.LedgerRepository, cache AccountCache) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	return &service{ledger: ledger, cache: cache}
}

func (s *service) GetHistory(ctx context.Context, accountID uint) (*Statement, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	transactions, err := s.ledger.FindTransactionsForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return &Statement{
		AccountID:    accountID,
		Balance:      account.Balance,
		Transactions: transactions,
	}, nil
}

func (s *service) getAccount(ctx context.Context, id uint) (*models.Account, error) {
	if s.cache != nil {
		if account, err := s.cache.GetAccount(ctx, id); err == nil && account != nil {
			return account, nil
		}
	}

	account, err := s.ledger.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheAccount(ctx, account); err != nil {
			log.Printf("failed to cache account %d: %v", id, err)
		}
	}
	return account, nil
}
