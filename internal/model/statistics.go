package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds aggregate totals for an inclusive date window.
// NetAmount is always TotalIncome minus TotalExpenses and may be negative.
type Summary struct {
	Start         time.Time
	End           time.Time
	ByCategory    map[Category]decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
	NetAmount     decimal.Decimal
}
