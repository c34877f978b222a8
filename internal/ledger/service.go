package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/llm"
	"github.com/zeronote/zeronote/internal/model"
)

// defaultSource marks records entered directly by the user rather than
// ingested from an external feed.
const defaultSource = "manual entry"

// defaultRecentLimit is the page size for recent-transaction listings.
const defaultRecentLimit = 10

// Request carries the caller-supplied fields for a create or update.
// Only Amount is required; everything else is optional input for the
// classifier or provenance metadata.
type Request struct {
	TransactionDate time.Time
	Description     string
	Merchant        string
	Location        string
	Source          string
	ExternalID      string
	Amount          decimal.Decimal
}

// Validate rejects requests before any classification work happens.
func (r *Request) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", common.ErrInvalidAmount, r.Amount.String())
	}
	return nil
}

// Service orchestrates transaction mutations: classify, merge, persist.
// Classifier failures never propagate; store failures always do.
type Service struct {
	store      Store
	classifier Classifier
	logger     *slog.Logger
}

// NewService creates a transaction service.
func NewService(store Store, classifier Classifier, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// Create classifies the raw input and persists the resulting record.
// The record always carries a usable classification: the classifier falls
// back to deterministic defaults when the LLM is unreachable.
func (s *Service) Create(ctx context.Context, req Request) (model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return model.Transaction{}, err
	}

	analysis := s.classifier.Classify(ctx, llm.Input{
		Amount:      req.Amount,
		Description: req.Description,
		Merchant:    req.Merchant,
		Location:    req.Location,
	})

	txn := model.Transaction{
		Amount:          req.Amount,
		Type:            analysis.Type,
		Category:        analysis.Category,
		Scenario:        analysis.Scenario,
		Description:     analysis.Description,
		Merchant:        analysis.Merchant,
		Location:        req.Location,
		AIAnalysis:      analysis.Analysis,
		TransactionDate: req.TransactionDate,
		Source:          req.Source,
		ExternalID:      req.ExternalID,
	}
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = time.Now().UTC()
	}
	if txn.Source == "" {
		txn.Source = defaultSource
	}

	saved, err := s.store.Save(ctx, txn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("transaction created",
		"id", saved.ID,
		"amount", saved.Amount.String(),
		"category", saved.Category,
		"source", saved.Source)

	return saved, nil
}

// Update overwrites the record's raw fields from the request and re-runs
// classification against the new input, not the stored record. Category
// correctness must track the latest description and merchant.
func (s *Service) Update(ctx context.Context, id string, req Request) (model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return model.Transaction{}, err
	}

	txn, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Transaction{}, err
	}

	txn.Amount = req.Amount
	txn.Description = req.Description
	txn.Merchant = req.Merchant
	txn.Location = req.Location
	if !req.TransactionDate.IsZero() {
		txn.TransactionDate = req.TransactionDate
	}

	analysis := s.classifier.Classify(ctx, llm.Input{
		Amount:      req.Amount,
		Description: req.Description,
		Merchant:    req.Merchant,
		Location:    req.Location,
	})

	txn.Type = analysis.Type
	txn.Category = analysis.Category
	txn.Scenario = analysis.Scenario
	txn.AIAnalysis = analysis.Analysis

	updated, err := s.store.Update(ctx, txn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.logger.Info("transaction updated",
		"id", updated.ID,
		"amount", updated.Amount.String(),
		"category", updated.Category)

	return updated, nil
}

// Delete removes a record by id, reporting whether it existed. Absence is
// not an error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	if deleted {
		s.logger.Info("transaction deleted", "id", id)
	}
	return deleted, nil
}

// Get retrieves a record by id.
func (s *Service) Get(ctx context.Context, id string) (model.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Search returns the union of records whose description or merchant
// contains the keyword, case-insensitively, de-duplicated by record id.
func (s *Service) Search(ctx context.Context, keyword string) ([]model.Transaction, error) {
	return s.store.Search(ctx, keyword)
}

// ListRecent returns the most recent records, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.store.ListRecent(ctx, limit)
}

// ListAll returns a page of records, newest first.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	return s.store.ListAll(ctx, limit, offset)
}

// ListByCategory returns a page of records in a category. An unknown
// category token yields an empty result, not an error.
func (s *Service) ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.Transaction, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		s.logger.Warn("unknown category in listing request", "category", category)
		return []model.Transaction{}, nil
	}
	return s.store.ListByCategory(ctx, cat, limit, offset)
}

// ListByDateRange returns records inside the inclusive window, newest first.
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return s.store.ListByDateRange(ctx, start, end)
}

// CreateFromFeed persists an externally sourced record unless its external
// id was already ingested. Returns the created record and whether a new
// record was written.
func (s *Service) CreateFromFeed(ctx context.Context, req Request) (model.Transaction, bool, error) {
	if req.ExternalID != "" {
		exists, err := s.store.ExistsByExternalID(ctx, req.ExternalID)
		if err != nil {
			return model.Transaction{}, false, fmt.Errorf("failed to check external id: %w", err)
		}
		if exists {
			s.logger.Debug("skipping duplicate feed record", "external_id", req.ExternalID)
			return model.Transaction{}, false, nil
		}
	}

	txn, err := s.Create(ctx, req)
	if err != nil {
		return model.Transaction{}, false, err
	}
	return txn, true, nil
}
