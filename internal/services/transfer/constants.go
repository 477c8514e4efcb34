package transfer

import "time"

// DefaultCommissionRate is the fee charged on top of every transfer,
// deducted from the sender.
const DefaultCommissionRate = "0.015"

// Money values carry exactly two fractional digits.
const MoneyPrecision = 2

// Retry behaviour for conflicting transactions.
const (
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = 50 * time.Millisecond
)
