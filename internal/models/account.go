package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account statuses
const (
	AccountStatusActive = "active"
	AccountStatusLocked = "locked"
)

// Account holds a single monetary balance. Accounts are created and
// destroyed by the account-management service; this engine only mutates
// balances, and only under an exclusive row lock.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Balance   decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"default:'USD'" json:"currency"`
	Status    string          `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
