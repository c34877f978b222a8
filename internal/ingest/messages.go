// Package ingest consumes transaction feed messages from a message broker
// and turns them into classified ledger records.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/ledger"
)

// FeedMessage is the wire format for an externally sourced transaction.
// Amount is a decimal string so producers never round through floats.
type FeedMessage struct {
	Amount          string    `json:"amount"`
	Description     string    `json:"description,omitempty"`
	Merchant        string    `json:"merchant,omitempty"`
	Location        string    `json:"location,omitempty"`
	TransactionDate time.Time `json:"transaction_date,omitempty"`
	Source          string    `json:"source"`
	ExternalID      string    `json:"external_id"`
}

// ToJSON converts the message to JSON bytes.
func (m *FeedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FeedMessageFromJSON parses a message from JSON bytes.
func FeedMessageFromJSON(data []byte) (*FeedMessage, error) {
	var msg FeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToRequest converts the message into a service request.
func (m *FeedMessage) ToRequest() (ledger.Request, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return ledger.Request{}, fmt.Errorf("invalid amount %q: %w", m.Amount, err)
	}
	return ledger.Request{
		Amount:          amount,
		Description:     m.Description,
		Merchant:        m.Merchant,
		Location:        m.Location,
		TransactionDate: m.TransactionDate,
		Source:          m.Source,
		ExternalID:      m.ExternalID,
	}, nil
}
