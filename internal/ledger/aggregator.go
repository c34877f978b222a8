package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/model"
)

// Aggregator computes income/expense totals and per-category breakdowns
// over inclusive date windows. All sums use exact decimal arithmetic;
// two-decimal-place amounts therefore sum without drift.
type Aggregator struct {
	store  Store
	logger *slog.Logger
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger,
	}
}

// Summarize computes totals over [start, end]. A reversed window simply
// matches no records and yields a zero summary rather than an error.
func (a *Aggregator) Summarize(ctx context.Context, start, end time.Time) (model.Summary, error) {
	summary := model.Summary{
		Start:         start,
		End:           end,
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
		NetAmount:     decimal.Zero,
		ByCategory:    map[model.Category]decimal.Decimal{},
	}

	if end.Before(start) {
		return summary, nil
	}

	expenses, err := a.store.ListByTypeInRange(ctx, model.TypeExpense, start, end)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to load expenses: %w", err)
	}

	incomes, err := a.store.ListByTypeInRange(ctx, model.TypeIncome, start, end)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to load income: %w", err)
	}

	for _, txn := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(txn.Amount)

		existing, ok := summary.ByCategory[txn.Category]
		if !ok {
			existing = decimal.Zero
		}
		summary.ByCategory[txn.Category] = existing.Add(txn.Amount)
	}

	for _, txn := range incomes {
		summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
	}

	summary.NetAmount = summary.TotalIncome.Sub(summary.TotalExpenses)

	a.logger.Debug("window summarized",
		"start", start,
		"end", end,
		"expenses", summary.TotalExpenses.String(),
		"income", summary.TotalIncome.String(),
		"net", summary.NetAmount.String())

	return summary, nil
}
