package main

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/model"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize income and expenses over a date window",
		Long: `Print totals and a per-category expense breakdown for an
inclusive date window. Defaults to the trailing 30 days.`,
		RunE: runStats,
	}

	cmd.Flags().String("start", "", "window start (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().String("end", "", "window end (RFC 3339 or YYYY-MM-DD)")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if raw, _ := cmd.Flags().GetString("start"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid start %q: %w", raw, err)
		}
		start = parsed
	}
	if raw, _ := cmd.Flags().GetString("end"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid end %q: %w", raw, err)
		}
		// A bare date covers the whole day.
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	logger := slog.Default()
	store, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	aggregator := ledger.NewAggregator(store, logger)
	summary, err := aggregator.Summarize(cmd.Context(), start, end)
	if err != nil {
		return err
	}

	fmt.Printf("Window:   %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Income:   %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Printf("Expenses: %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Printf("Net:      %s\n", summary.NetAmount.StringFixed(2))

	if len(summary.ByCategory) > 0 {
		fmt.Println("\nBy category:")
		for _, category := range sortedCategories(summary.ByCategory) {
			fmt.Printf("  %-20s %s\n", category.Label(), summary.ByCategory[category].StringFixed(2))
		}
	}

	return nil
}

// sortedCategories orders categories by descending total.
func sortedCategories(byCategory map[model.Category]decimal.Decimal) []model.Category {
	categories := make([]model.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return byCategory[categories[i]].GreaterThan(byCategory[categories[j]])
	})
	return categories
}
