package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/model"
)

// stubService records calls and serves canned transactions.
type stubService struct {
	records    map[string]model.Transaction
	lastCreate ledger.Request
	lastUpdate ledger.Request
	failWith   error
}

func newStubService() *stubService {
	return &stubService{records: make(map[string]model.Transaction)}
}

func (s *stubService) classified(req ledger.Request) model.Transaction {
	date := req.TransactionDate
	if date.IsZero() {
		date = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return model.Transaction{
		ID:              fmt.Sprintf("txn-%d", len(s.records)+1),
		Amount:          req.Amount,
		Type:            model.TypeExpense,
		Category:        model.CategoryFoodDining,
		Scenario:        model.ScenarioRegular,
		Description:     "burrito bowl",
		Merchant:        "Chipotle",
		Location:        req.Location,
		TransactionDate: date,
		Source:          req.Source,
		ExternalID:      req.ExternalID,
		CreatedAt:       date,
		UpdatedAt:       date,
	}
}

func (s *stubService) Create(_ context.Context, req ledger.Request) (model.Transaction, error) {
	if s.failWith != nil {
		return model.Transaction{}, s.failWith
	}
	if err := req.Validate(); err != nil {
		return model.Transaction{}, err
	}
	s.lastCreate = req
	txn := s.classified(req)
	s.records[txn.ID] = txn
	return txn, nil
}

func (s *stubService) Update(_ context.Context, id string, req ledger.Request) (model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return model.Transaction{}, err
	}
	if _, ok := s.records[id]; !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	s.lastUpdate = req
	txn := s.classified(req)
	txn.ID = id
	s.records[id] = txn
	return txn, nil
}

func (s *stubService) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

func (s *stubService) Get(_ context.Context, id string) (model.Transaction, error) {
	txn, ok := s.records[id]
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return txn, nil
}

func (s *stubService) Search(_ context.Context, keyword string) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, txn := range s.records {
		if strings.Contains(strings.ToLower(txn.Description), strings.ToLower(keyword)) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *stubService) ListRecent(_ context.Context, _ int) ([]model.Transaction, error) {
	return s.all(), nil
}

func (s *stubService) ListAll(_ context.Context, _, _ int) ([]model.Transaction, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.all(), nil
}

func (s *stubService) ListByCategory(_ context.Context, category string, _, _ int) ([]model.Transaction, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return []model.Transaction{}, nil
	}
	var out []model.Transaction
	for _, txn := range s.records {
		if txn.Category == cat {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *stubService) ListByDateRange(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, txn := range s.records {
		if !txn.TransactionDate.Before(start) && !txn.TransactionDate.After(end) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *stubService) all() []model.Transaction {
	out := make([]model.Transaction, 0, len(s.records))
	for _, txn := range s.records {
		out = append(out, txn)
	}
	return out
}

// stubSummarizer returns a fixed summary.
type stubSummarizer struct {
	summary   model.Summary
	lastStart time.Time
	lastEnd   time.Time
}

func (s *stubSummarizer) Summarize(_ context.Context, start, end time.Time) (model.Summary, error) {
	s.lastStart = start
	s.lastEnd = end
	summary := s.summary
	summary.Start = start
	summary.End = end
	return summary, nil
}

func newTestRouter(service TransactionService, stats Summarizer) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer("127.0.0.1:0", NewHandler(service, stats, logger), logger).httpServer.Handler
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateTransaction(t *testing.T) {
	service := newStubService()
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodPost, "/api/transactions",
		`{"amount": "12.75", "description": "chipotle", "location": "Valencia St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "12.75", resp.Amount)
	assert.Equal(t, "FOOD_DINING", resp.Category)
	assert.Equal(t, "Food & Dining", resp.CategoryLabel)
	assert.Equal(t, "chipotle", service.lastCreate.Description)
	assert.Equal(t, "Valencia St", service.lastCreate.Location)
}

func TestCreateTransactionAcceptsNumericAmount(t *testing.T) {
	service := newStubService()
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodPost, "/api/transactions", `{"amount": 9.99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, service.lastCreate.Amount.Equal(decimal.RequireFromString("9.99")))
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	router := newTestRouter(newStubService(), &stubSummarizer{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"amount": `},
		{name: "non-positive amount", body: `{"amount": "0"}`},
		{name: "bad date", body: `{"amount": "5.00", "transaction_date": "yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateTransactionStoreFailureIs500(t *testing.T) {
	service := newStubService()
	service.failWith = fmt.Errorf("disk full")
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodPost, "/api/transactions", `{"amount": "5.00"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestCreateQuickTransaction(t *testing.T) {
	service := newStubService()
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodPost, "/api/transactions/quick?amount=25.50", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, service.lastCreate.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.Empty(t, service.lastCreate.Description)

	rec = doRequest(t, router, http.MethodPost, "/api/transactions/quick", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/transactions/quick?amount=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransaction(t *testing.T) {
	service := newStubService()
	txn, err := service.Create(context.Background(), ledger.Request{Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/api/transactions/"+txn.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, txn.ID, resp.ID)

	rec = doRequest(t, router, http.MethodGet, "/api/transactions/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTransaction(t *testing.T) {
	service := newStubService()
	txn, err := service.Create(context.Background(), ledger.Request{Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodPut, "/api/transactions/"+txn.ID,
		`{"amount": "9.99", "description": "train ticket"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "train ticket", service.lastUpdate.Description)

	rec = doRequest(t, router, http.MethodPut, "/api/transactions/no-such-id", `{"amount": "9.99"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	service := newStubService()
	txn, err := service.Create(context.Background(), ledger.Request{Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodDelete, "/api/transactions/"+txn.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/transactions/"+txn.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactions(t *testing.T) {
	service := newStubService()
	_, err := service.Create(context.Background(), ledger.Request{Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestListByCategoryUnknownTokenIsEmptyPage(t *testing.T) {
	service := newStubService()
	_, err := service.Create(context.Background(), ledger.Request{Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	router := newTestRouter(service, &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/api/transactions/category/NOT_A_CATEGORY", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/transactions/category/FOOD_DINING", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestSearchRequiresKeyword(t *testing.T) {
	router := newTestRouter(newStubService(), &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/api/transactions/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/transactions/search?keyword=latte", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDateRangeValidation(t *testing.T) {
	router := newTestRouter(newStubService(), &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/api/transactions/date-range?start=2024-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet,
		"/api/transactions/date-range?start=2024-06-01&end=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet,
		"/api/transactions/date-range?start=2024-06-01&end=2024-06-30", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetStatistics(t *testing.T) {
	stats := &stubSummarizer{summary: model.Summary{
		TotalExpenses: decimal.RequireFromString("100.00"),
		TotalIncome:   decimal.RequireFromString("40.00"),
		NetAmount:     decimal.RequireFromString("-60.00"),
		ByCategory: map[model.Category]decimal.Decimal{
			model.CategoryShopping: decimal.RequireFromString("100.00"),
		},
	}}
	router := newTestRouter(newStubService(), stats)

	rec := doRequest(t, router, http.MethodGet,
		"/api/transactions/statistics?start=2024-06-01&end=2024-06-30", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "100.00", resp.TotalExpenses)
	assert.Equal(t, "40.00", resp.TotalIncome)
	assert.Equal(t, "-60.00", resp.NetAmount)
	assert.Equal(t, "100.00", resp.ByCategory["SHOPPING"])

	// A bare end date covers the whole final day.
	assert.Equal(t, 23, stats.lastEnd.Hour())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(newStubService(), &stubSummarizer{})

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
