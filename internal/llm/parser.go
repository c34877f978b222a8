package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

// analysisPayload mirrors the JSON schema the prompt instructs the model to
// produce. Pointer fields distinguish an absent key from an empty value.
type analysisPayload struct {
	Type        *string `json:"type"`
	Category    *string `json:"category"`
	Scenario    *string `json:"scenario"`
	Merchant    *string `json:"merchant"`
	Description *string `json:"description"`
	Analysis    *string `json:"analysis"`
}

// parseAnalysis validates and converts a raw model response into an
// AnalysisResult. Validation is all-or-nothing: a missing field or an
// enumeration value outside the closed set rejects the whole response, so
// no partial merge of a malformed classification can reach storage.
func parseAnalysis(content string) (model.AnalysisResult, error) {
	content = cleanMarkdownWrapper(content)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: unparseable JSON response: %w", common.ErrClassificationFailed, err)
	}

	if payload.Type == nil || payload.Category == nil || payload.Scenario == nil ||
		payload.Merchant == nil || payload.Description == nil || payload.Analysis == nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: response missing required field", common.ErrClassificationFailed)
	}

	txType, err := model.ParseType(*payload.Type)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: invalid type in response: %w", common.ErrClassificationFailed, err)
	}

	category, err := model.ParseCategory(*payload.Category)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: invalid category in response: %w", common.ErrClassificationFailed, err)
	}

	scenario, err := model.ParseScenario(*payload.Scenario)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: invalid scenario in response: %w", common.ErrClassificationFailed, err)
	}

	return model.AnalysisResult{
		Type:        txType,
		Category:    category,
		Scenario:    scenario,
		Merchant:    *payload.Merchant,
		Description: *payload.Description,
		Analysis:    *payload.Analysis,
	}, nil
}

// cleanMarkdownWrapper strips code fences and surrounding prose that models
// sometimes emit despite instructions, keeping only the JSON object.
func cleanMarkdownWrapper(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If junk remains around the object, keep only the outermost braces.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
