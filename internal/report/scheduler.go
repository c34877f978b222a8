// Package report runs scheduled spending summaries.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

const defaultSchedule = "0 8 * * *"

// Summarizer computes aggregate totals for a date window.
type Summarizer interface {
	Summarize(ctx context.Context, start, end time.Time) (model.Summary, error)
}

// Scheduler periodically summarizes a trailing window of spending and
// logs the result. It gives an unattended deployment a daily pulse of
// the ledger without anyone calling the statistics endpoint.
type Scheduler struct {
	cron       *cron.Cron
	summarizer Summarizer
	windowDays int
	logger     *slog.Logger
}

// NewScheduler creates a scheduler that reports on the trailing
// windowDays days using the given cron expression. An empty schedule
// falls back to daily at 08:00.
func NewScheduler(summarizer Summarizer, schedule string, windowDays int, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = defaultSchedule
	}
	if windowDays <= 0 {
		windowDays = 7
	}

	s := &Scheduler{
		cron:       cron.New(),
		summarizer: summarizer,
		windowDays: windowDays,
		logger:     logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.report); err != nil {
		return nil, fmt.Errorf("%w: report schedule %q: %w", common.ErrInvalidConfig, schedule, err)
	}

	return s, nil
}

// Run starts the cron loop and blocks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("report scheduler started", "window_days", s.windowDays)

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (s *Scheduler) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -s.windowDays)

	summary, err := s.summarizer.Summarize(ctx, start, end)
	if err != nil {
		s.logger.Error("scheduled summary failed", "error", err)
		return
	}

	s.logger.Info("spending summary",
		"window_days", s.windowDays,
		"expenses", summary.TotalExpenses.StringFixed(2),
		"income", summary.TotalIncome.StringFixed(2),
		"net", summary.NetAmount.StringFixed(2),
		"top_category", topCategory(summary.ByCategory))
}

// topCategory returns the expense category with the largest total.
func topCategory(byCategory map[model.Category]decimal.Decimal) string {
	var top model.Category
	best := decimal.Zero
	for category, amount := range byCategory {
		if amount.GreaterThan(best) {
			top = category
			best = amount
		}
	}
	if top == "" {
		return "none"
	}
	return string(top)
}
