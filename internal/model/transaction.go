package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrMissingType   = errors.New("transaction type is required")
	ErrMissingDate   = errors.New("transaction date is required")
	ErrInvalidEnum   = errors.New("invalid enumeration value")
)

// Transaction represents a single recorded financial transaction.
// Type, Category and Scenario are always populated; the classifier's
// fallback guarantees this even when the LLM is unreachable.
type Transaction struct {
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	Description     string
	Merchant        string
	Location        string
	AIAnalysis      string
	Source          string
	ExternalID      string
	Type            TransactionType
	Category        Category
	Scenario        Scenario
	Amount          decimal.Decimal
}

// Validate checks the persistence invariants of a transaction.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Type == "" {
		return ErrMissingType
	}
	if _, ok := typeLabels[t.Type]; !ok {
		return ErrInvalidEnum
	}
	if _, ok := categoryLabels[t.Category]; !ok {
		return ErrInvalidEnum
	}
	if _, ok := scenarioLabels[t.Scenario]; !ok {
		return ErrInvalidEnum
	}
	if t.TransactionDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}
