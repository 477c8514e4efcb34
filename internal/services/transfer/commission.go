package transfer

import "github.com/shopspring/decimal"

// RoundMoney rounds to two decimal places, ties away from zero. All
// amounts handled by the engine are non-negative, so this is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// Commission returns the fee for transferring amount: round(amount * rate, 2).
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}

// TotalDebit returns the full charge against the sender for transferring
// amount: round(amount + commission, 2).
func TotalDebit(amount, commission decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Add(commission))
}
