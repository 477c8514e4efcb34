package transfer

import (
	"context"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

// Notifier receives committed transfers for fan-out to interested
// subscribers. Implementations must be fire-and-forget: delivery failures
// are theirs to log, never the engine's to handle.
type Notifier interface {
	TransferCompleted(tx *models.Transaction, senderBalance, receiverBalance decimal.Decimal)
}

// AccountCache invalidates cached account snapshots after a mutation.
type AccountCache interface {
	InvalidateAccount(ctx context.Context, id uint) error
}

// Service executes money transfers between accounts.
type Service interface {
	Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal) (*Result, error)
}
