// Package llm turns partial transaction input into a full classification
// using a large-language-model provider, with a deterministic fallback when
// the provider is unavailable or returns an unusable response.
package llm
