package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

// defaultTimeout bounds a single classification call. Expiry is treated
// exactly like a provider failure.
const defaultTimeout = 30 * time.Second

// Classifier turns partial transaction input into a full classification.
// It never fails outward: any provider or parsing error yields the
// deterministic fallback result.
type Classifier struct {
	client  Client
	logger  *slog.Logger
	timeout time.Duration
}

// Input is the raw material for a classification. Only Amount is mandatory.
type Input struct {
	Description string
	Merchant    string
	Location    string
	Amount      decimal.Decimal
}

// NewClassifier creates a new LLM-based classifier.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	if cfg.Temperature == 0 {
		// Near-deterministic sampling keeps classification variance low.
		cfg.Temperature = 0.1
	}

	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	case "gemini":
		client, err = newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Classifier{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Classify analyzes a transaction and returns its classification. A single
// provider call is made with no retries; classification is best-effort
// enrichment, so any failure immediately yields the fallback result.
func (c *Classifier) Classify(ctx context.Context, input Input) model.AnalysisResult {
	prompt := c.buildPrompt(input, time.Now())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.client.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("classification call failed, applying fallback",
			"error", err,
			"amount", input.Amount.String())
		return model.FallbackAnalysis()
	}

	result, err := parseAnalysis(content)
	if err != nil {
		c.logger.Warn("unusable classification response, applying fallback",
			"error", err,
			"amount", input.Amount.String())
		return model.FallbackAnalysis()
	}

	c.logger.Info("transaction classified",
		"amount", input.Amount.String(),
		"type", result.Type,
		"category", result.Category,
		"scenario", result.Scenario)

	return result
}

// buildPrompt creates the prompt for transaction classification.
func (c *Classifier) buildPrompt(input Input, now time.Time) string {
	details := fmt.Sprintf("Amount: %s\nDescription: %s\nMerchant: %s\nLocation: %s\nTime: %s",
		input.Amount.StringFixed(2),
		input.Description,
		input.Merchant,
		input.Location,
		now.Format("2006-01-02 15:04:05"))

	var categoryList strings.Builder
	for _, cat := range model.AllCategories() {
		fmt.Fprintf(&categoryList, "- %s (%s)\n", cat, cat.Label())
	}

	var scenarioList strings.Builder
	for _, sc := range model.AllScenarios() {
		fmt.Fprintf(&scenarioList, "- %s (%s)\n", sc, sc.Label())
	}

	return fmt.Sprintf(`Analyze this financial transaction and classify it.

Transaction Details:
%s

Rules:
1. Transaction type must be one of: EXPENSE, INCOME, TRANSFER
2. Category must be one of the predefined categories below
3. Scenario identifies special handling such as reimbursement, refund, or subscription
4. Extract or infer the merchant name; if nothing suggests one, use a short neutral guess
5. Generate a concise description of the transaction

Predefined categories:
%s
Scenario types:
%s
Respond with a JSON object in exactly this schema:
{
    "type": "EXPENSE",
    "category": "FOOD_DINING",
    "scenario": "REGULAR",
    "merchant": "merchant name",
    "description": "transaction description",
    "analysis": "brief explanation of the classification"
}`,
		details,
		categoryList.String(),
		scenarioList.String())
}
