// Package ledger owns the lifecycle of transaction records: classification
// on every mutation, persistence through the record store, and aggregate
// statistics over date windows.
package ledger

import (
	"context"
	"time"

	"github.com/zeronote/zeronote/internal/llm"
	"github.com/zeronote/zeronote/internal/model"
)

// Store is the record store the ledger persists through. Implementations
// own their concurrency control; the ledger holds no shared mutable state.
type Store interface {
	Save(ctx context.Context, txn model.Transaction) (model.Transaction, error)
	Get(ctx context.Context, id string) (model.Transaction, error)
	Update(ctx context.Context, txn model.Transaction) (model.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	Search(ctx context.Context, keyword string) ([]model.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]model.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Transaction, error)
	ListByCategory(ctx context.Context, category model.Category, limit, offset int) ([]model.Transaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	ListByTypeInRange(ctx context.Context, txType model.TransactionType, start, end time.Time) ([]model.Transaction, error)
}

// Classifier produces a classification for raw transaction input. It never
// returns an error; unavailable or invalid provider responses surface as
// the deterministic fallback result.
type Classifier interface {
	Classify(ctx context.Context, input llm.Input) model.AnalysisResult
}
