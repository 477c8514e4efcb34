package transfer

import (
	"time"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for the transfer engine.
type Config struct {
	// CommissionRate is the proportional fee deducted from the sender on
	// top of the transferred amount.
	CommissionRate decimal.Decimal

	// MaxAttempts bounds how often a transfer is retried after a lock or
	// serialization conflict.
	MaxAttempts int

	// RetryBackoff is the pause between attempts, scaled linearly.
	RetryBackoff time.Duration
}

// Result is the outcome of a committed transfer: the immutable record plus
// both balances as they stood at commit time.
type Result struct {
	Transaction     *models.Transaction `json:"transaction"`
	SenderBalance   decimal.Decimal     `json:"sender_balance"`
	ReceiverBalance decimal.Decimal     `json:"receiver_balance"`
}

// MetricsCollector defines the metrics hooks of the transfer engine.
type MetricsCollector interface {
	RecordTransfer(amount decimal.Decimal, duration time.Duration)
	RecordFailure(reason string)
	RecordRetry()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransfer(decimal.Decimal, time.Duration) {}
func (NoopMetricsCollector) RecordFailure(string)                          {}
func (NoopMetricsCollector) RecordRetry()                                  {}
