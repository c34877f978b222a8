package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/model"
)

// transactionRequest is the JSON body for create and update calls.
// Amount accepts either a JSON number or a quoted decimal string.
type transactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Merchant        string          `json:"merchant"`
	Location        string          `json:"location"`
	TransactionDate string          `json:"transaction_date"`
	Source          string          `json:"source"`
	ExternalID      string          `json:"external_id"`
}

func (tr *transactionRequest) toRequest() (ledger.Request, error) {
	req := ledger.Request{
		Amount:      tr.Amount,
		Description: tr.Description,
		Merchant:    tr.Merchant,
		Location:    tr.Location,
		Source:      tr.Source,
		ExternalID:  tr.ExternalID,
	}

	if tr.TransactionDate != "" {
		date, err := parseTimestamp(tr.TransactionDate)
		if err != nil {
			return ledger.Request{}, fmt.Errorf("invalid transaction_date %q: %w", tr.TransactionDate, err)
		}
		req.TransactionDate = date
	}

	return req, nil
}

// transactionResponse renders a stored record. Amounts are serialized as
// fixed two-decimal strings so clients never see float artifacts.
type transactionResponse struct {
	ID              string `json:"id"`
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	Category        string `json:"category"`
	CategoryLabel   string `json:"category_label"`
	Scenario        string `json:"scenario"`
	Description     string `json:"description"`
	Merchant        string `json:"merchant"`
	Location        string `json:"location,omitempty"`
	AIAnalysis      string `json:"ai_analysis,omitempty"`
	TransactionDate string `json:"transaction_date"`
	Source          string `json:"source,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toTransactionResponse(txn model.Transaction) transactionResponse {
	return transactionResponse{
		ID:              txn.ID,
		Amount:          txn.Amount.StringFixed(2),
		Type:            string(txn.Type),
		Category:        string(txn.Category),
		CategoryLabel:   txn.Category.Label(),
		Scenario:        string(txn.Scenario),
		Description:     txn.Description,
		Merchant:        txn.Merchant,
		Location:        txn.Location,
		AIAnalysis:      txn.AIAnalysis,
		TransactionDate: txn.TransactionDate.Format(time.RFC3339),
		Source:          txn.Source,
		ExternalID:      txn.ExternalID,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       txn.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(txns []model.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, toTransactionResponse(txn))
	}
	return out
}

// summaryResponse renders aggregate totals for a date window.
type summaryResponse struct {
	Start         string            `json:"start"`
	End           string            `json:"end"`
	TotalExpenses string            `json:"total_expenses"`
	TotalIncome   string            `json:"total_income"`
	NetAmount     string            `json:"net_amount"`
	ByCategory    map[string]string `json:"by_category"`
}

func toSummaryResponse(summary model.Summary) summaryResponse {
	byCategory := make(map[string]string, len(summary.ByCategory))
	for category, amount := range summary.ByCategory {
		byCategory[string(category)] = amount.StringFixed(2)
	}
	return summaryResponse{
		Start:         summary.Start.Format(time.RFC3339),
		End:           summary.End.Format(time.RFC3339),
		TotalExpenses: summary.TotalExpenses.StringFixed(2),
		TotalIncome:   summary.TotalIncome.StringFixed(2),
		NetAmount:     summary.NetAmount.StringFixed(2),
		ByCategory:    byCategory,
	}
}

// parseTimestamp accepts RFC 3339 timestamps or bare dates.
func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}
