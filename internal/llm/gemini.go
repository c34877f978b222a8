package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/zeronote/zeronote/internal/common"
)

// geminiClient implements the Client interface for the Gemini API.
type geminiClient struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 400
	}

	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Complete sends a completion request to Gemini and returns the raw text.
func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.temperature)),
		MaxOutputTokens: int32(c.maxTokens),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a financial transaction classifier. Respond with ONLY a valid JSON object in the exact schema requested. Do not wrap the response in code fences."},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}
