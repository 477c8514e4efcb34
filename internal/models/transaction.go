package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is the immutable record of a committed transfer. The row is
// written in the same database transaction as the debit and credit it
// describes, always with status completed; failed attempts leave no row.
type Transaction struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Reference     string          `gorm:"uniqueIndex;size:64" json:"reference"`
	SenderID      uint            `gorm:"not null;index" json:"sender_id"`
	ReceiverID    uint            `gorm:"not null;index" json:"receiver_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	CommissionFee decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0" json:"commission_fee"`
	Status        string          `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalDebited is the full amount removed from the sender.
func (t *Transaction) TotalDebited() decimal.Decimal {
	return t.Amount.Add(t.CommissionFee)
}
