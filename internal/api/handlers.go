package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionService is the slice of the ledger service the handlers need.
type TransactionService interface {
	Create(ctx context.Context, req ledger.Request) (model.Transaction, error)
	Update(ctx context.Context, id string, req ledger.Request) (model.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (model.Transaction, error)
	Search(ctx context.Context, keyword string) ([]model.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]model.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Transaction, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.Transaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}

// Summarizer computes aggregate totals for a date window.
type Summarizer interface {
	Summarize(ctx context.Context, start, end time.Time) (model.Summary, error)
}

// Handler holds the HTTP handlers for the transaction API.
type Handler struct {
	service TransactionService
	stats   Summarizer
	logger  *slog.Logger
}

// NewHandler creates the API handler set.
func NewHandler(service TransactionService, stats Summarizer, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		stats:   stats,
		logger:  logger,
	}
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

// CreateQuickTransaction handles POST /api/transactions/quick. It takes
// only an amount query parameter and lets classification fill in the rest.
func (h *Handler) CreateQuickTransaction(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "amount query parameter is required")
		return
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	txn, err := h.service.Create(r.Context(), ledger.Request{Amount: amount})
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.service.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTransactions handles GET /api/transactions with page/size paging.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := pageSize(r)

	txns, err := h.service.ListAll(r.Context(), size, page*size)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// ListRecentTransactions handles GET /api/transactions/recent.
func (h *Handler) ListRecentTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.ListRecent(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// ListTransactionsByCategory handles GET /api/transactions/category/{category}.
// An unknown category yields an empty page, not an error.
func (h *Handler) ListTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := pageSize(r)

	txns, err := h.service.ListByCategory(r.Context(), r.PathValue("category"), size, page*size)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// ListTransactionsByDateRange handles GET /api/transactions/date-range.
func (h *Handler) ListTransactionsByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.service.ListByDateRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// SearchTransactions handles GET /api/transactions/search.
func (h *Handler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword query parameter is required")
		return
	}

	txns, err := h.service.Search(r.Context(), keyword)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// GetStatistics handles GET /api/transactions/statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.stats.Summarize(r.Context(), start, end)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func pageSize(r *http.Request) int {
	size := queryInt(r, "size", defaultPageSize)
	if size == 0 || size > maxPageSize {
		return defaultPageSize
	}
	return size
}

// parseWindow reads the start/end query parameters. Bare dates expand so
// the window stays inclusive of the whole end day.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, errInvalidWindow("start and end query parameters are required")
	}

	start, err := parseTimestamp(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidWindow("start must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}

	end, err := parseTimestamp(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidWindow("end must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	if len(rawEnd) == len("2006-01-02") {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return start, end, nil
}

type errInvalidWindow string

func (e errInvalidWindow) Error() string { return string(e) }
