package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	rate := decimal.RequireFromString(DefaultCommissionRate)

	tests := []struct {
		name       string
		amount     string
		commission string
		totalDebit string
	}{
		{"round amount", "100.00", "1.50", "101.50"},
		{"small amount rounds down", "0.10", "0.00", "0.10"},
		{"tie rounds up", "1.00", "0.02", "1.02"},
		{"tie rounds up larger", "3.00", "0.05", "3.05"},
		{"tie rounds up odd cents", "7.00", "0.11", "7.11"},
		{"two decimal places", "66.67", "1.00", "67.67"},
		{"large amount", "25000.00", "375.00", "25375.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			commission := Commission(amount, rate)
			assert.True(t, commission.Equal(decimal.RequireFromString(tt.commission)),
				"commission: got %s, want %s", commission, tt.commission)

			total := TotalDebit(amount, commission)
			assert.True(t, total.Equal(decimal.RequireFromString(tt.totalDebit)),
				"total debit: got %s, want %s", total, tt.totalDebit)
		})
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "1.24", RoundMoney(decimal.RequireFromString("1.235")).StringFixed(2))
	assert.Equal(t, "1.23", RoundMoney(decimal.RequireFromString("1.2349")).StringFixed(2))
	assert.Equal(t, "0.00", RoundMoney(decimal.RequireFromString("0.004")).StringFixed(2))
}
