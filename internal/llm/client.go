package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers. Implementations return
// the raw completion text; parsing and validation happen in the classifier.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}
