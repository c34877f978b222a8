package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/llm"
	"github.com/zeronote/zeronote/internal/model"
)

// memStore is an in-memory Store for service and aggregator tests.
type memStore struct {
	records     map[string]model.Transaction
	failWith    error
	saveCalls   int
	updateCalls int
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]model.Transaction)}
}

func (m *memStore) Save(_ context.Context, txn model.Transaction) (model.Transaction, error) {
	if m.failWith != nil {
		return model.Transaction{}, m.failWith
	}
	m.saveCalls++
	m.nextID++
	now := time.Now().UTC()
	txn.ID = fmt.Sprintf("txn-%d", m.nextID)
	txn.CreatedAt = now
	txn.UpdatedAt = now
	m.records[txn.ID] = txn
	return txn, nil
}

func (m *memStore) Get(_ context.Context, id string) (model.Transaction, error) {
	txn, ok := m.records[id]
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return txn, nil
}

func (m *memStore) Update(_ context.Context, txn model.Transaction) (model.Transaction, error) {
	if m.failWith != nil {
		return model.Transaction{}, m.failWith
	}
	if _, ok := m.records[txn.ID]; !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txn.ID, common.ErrNotFound)
	}
	m.updateCalls++
	txn.UpdatedAt = time.Now().UTC()
	m.records[txn.ID] = txn
	return txn, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *memStore) ExistsByExternalID(_ context.Context, externalID string) (bool, error) {
	for _, txn := range m.records {
		if txn.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Search(_ context.Context, keyword string) ([]model.Transaction, error) {
	kw := strings.ToLower(keyword)
	var out []model.Transaction
	for _, txn := range m.records {
		if strings.Contains(strings.ToLower(txn.Description), kw) ||
			strings.Contains(strings.ToLower(txn.Merchant), kw) {
			out = append(out, txn)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (m *memStore) ListRecent(_ context.Context, limit int) ([]model.Transaction, error) {
	all := m.all()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) ListAll(_ context.Context, limit, offset int) ([]model.Transaction, error) {
	all := m.all()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) ListByCategory(_ context.Context, category model.Category, limit, _ int) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, txn := range m.records {
		if txn.Category == category {
			out = append(out, txn)
		}
	}
	sortByDateDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListByDateRange(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, txn := range m.records {
		if !txn.TransactionDate.Before(start) && !txn.TransactionDate.After(end) {
			out = append(out, txn)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (m *memStore) ListByTypeInRange(_ context.Context, txType model.TransactionType, start, end time.Time) ([]model.Transaction, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.Transaction
	for _, txn := range m.records {
		if txn.Type == txType &&
			!txn.TransactionDate.Before(start) && !txn.TransactionDate.After(end) {
			out = append(out, txn)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (m *memStore) all() []model.Transaction {
	out := make([]model.Transaction, 0, len(m.records))
	for _, txn := range m.records {
		out = append(out, txn)
	}
	sortByDateDesc(out)
	return out
}

func sortByDateDesc(txns []model.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].TransactionDate.After(txns[j].TransactionDate)
	})
}

// stubClassifier returns a fixed result, or the fallback when broken.
type stubClassifier struct {
	result    model.AnalysisResult
	broken    bool
	calls     int
	lastInput llm.Input
}

func (s *stubClassifier) Classify(_ context.Context, input llm.Input) model.AnalysisResult {
	s.calls++
	s.lastInput = input
	if s.broken {
		return model.FallbackAnalysis()
	}
	return s.result
}
