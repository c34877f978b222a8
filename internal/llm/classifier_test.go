package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

// mockClient returns a canned response or error, and records the prompt.
type mockClient struct {
	err        error
	response   string
	lastPrompt string
	delay      time.Duration
}

func (m *mockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func testClassifier(client Client) *Classifier {
	return &Classifier{
		client:  client,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: time.Second,
	}
}

func TestClassifySuccess(t *testing.T) {
	client := &mockClient{response: `{
		"type": "EXPENSE",
		"category": "TAXI_RIDESHARE",
		"scenario": "BUSINESS_EXPENSE",
		"merchant": "Uber",
		"description": "ride to the airport",
		"analysis": "Rideshare charge, likely work travel."
	}`}

	result := testClassifier(client).Classify(context.Background(), Input{
		Amount:      decimal.RequireFromString("32.80"),
		Description: "uber to SFO",
	})

	assert.Equal(t, model.TypeExpense, result.Type)
	assert.Equal(t, model.CategoryTaxiRideshare, result.Category)
	assert.Equal(t, model.ScenarioBusinessExpense, result.Scenario)
	assert.Equal(t, "Uber", result.Merchant)
}

func TestClassifyProviderErrorFallsBack(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}

	result := testClassifier(client).Classify(context.Background(), Input{
		Amount: decimal.RequireFromString("25.50"),
	})

	assert.Equal(t, model.FallbackAnalysis(), result)
}

func TestClassifyMalformedResponseFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not JSON", response: "probably dining"},
		{name: "missing field", response: `{"type":"EXPENSE","category":"OTHER"}`},
		{name: "out-of-enum category", response: `{"type":"EXPENSE","category":"PETS","scenario":"REGULAR","merchant":"m","description":"d","analysis":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{response: tt.response}

			result := testClassifier(client).Classify(context.Background(), Input{
				Amount: decimal.RequireFromString("10.00"),
			})

			assert.Equal(t, model.FallbackAnalysis(), result)
		})
	}
}

func TestClassifyTimeoutFallsBack(t *testing.T) {
	client := &mockClient{
		response: `{"type":"EXPENSE","category":"OTHER","scenario":"REGULAR","merchant":"m","description":"d","analysis":"a"}`,
		delay:    time.Second,
	}
	c := &Classifier{
		client:  client,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: 10 * time.Millisecond,
	}

	result := c.Classify(context.Background(), Input{
		Amount: decimal.RequireFromString("10.00"),
	})

	assert.Equal(t, model.FallbackAnalysis(), result)
}

func TestBuildPrompt(t *testing.T) {
	c := testClassifier(&mockClient{})
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	prompt := c.buildPrompt(Input{
		Amount:      decimal.RequireFromString("25.5"),
		Description: "team lunch",
		Merchant:    "Chipotle",
		Location:    "Mission St",
	}, now)

	// The transaction details and current time are embedded.
	assert.Contains(t, prompt, "Amount: 25.50")
	assert.Contains(t, prompt, "Description: team lunch")
	assert.Contains(t, prompt, "Merchant: Chipotle")
	assert.Contains(t, prompt, "Location: Mission St")
	assert.Contains(t, prompt, "2024-06-01 09:30:00")

	// Every valid enumeration value is offered to the model.
	for _, cat := range model.AllCategories() {
		require.Contains(t, prompt, string(cat))
	}
	for _, sc := range model.AllScenarios() {
		require.Contains(t, prompt, string(sc))
	}

	// The fixed response schema is spelled out.
	assert.Contains(t, prompt, `"type"`)
	assert.Contains(t, prompt, `"analysis"`)
}

func TestNewClassifierUnsupportedProvider(t *testing.T) {
	_, err := NewClassifier(Config{Provider: "bard", APIKey: "k"}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestNewClassifierRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "gemini"} {
		_, err := NewClassifier(Config{Provider: provider}, slog.Default())
		require.Error(t, err, "provider %s should require an API key", provider)
		assert.ErrorIs(t, err, common.ErrMissingConfig, "provider %s", provider)
	}
}
