package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

const validResponse = `{
	"type": "EXPENSE",
	"category": "COFFEE_TEA",
	"scenario": "REGULAR",
	"merchant": "Blue Bottle",
	"description": "morning latte",
	"analysis": "Small purchase at a coffee shop."
}`

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.AnalysisResult
		wantErr bool
	}{
		{
			name:    "valid response",
			content: validResponse,
			want: model.AnalysisResult{
				Type:        model.TypeExpense,
				Category:    model.CategoryCoffeeTea,
				Scenario:    model.ScenarioRegular,
				Merchant:    "Blue Bottle",
				Description: "morning latte",
				Analysis:    "Small purchase at a coffee shop.",
			},
		},
		{
			name:    "markdown fenced response",
			content: "```json\n" + validResponse + "\n```",
			want: model.AnalysisResult{
				Type:        model.TypeExpense,
				Category:    model.CategoryCoffeeTea,
				Scenario:    model.ScenarioRegular,
				Merchant:    "Blue Bottle",
				Description: "morning latte",
				Analysis:    "Small purchase at a coffee shop.",
			},
		},
		{
			name:    "prose around the object",
			content: "Here is the classification:\n" + validResponse + "\nLet me know if you need more.",
			want: model.AnalysisResult{
				Type:        model.TypeExpense,
				Category:    model.CategoryCoffeeTea,
				Scenario:    model.ScenarioRegular,
				Merchant:    "Blue Bottle",
				Description: "morning latte",
				Analysis:    "Small purchase at a coffee shop.",
			},
		},
		{
			name: "lowercase enum tokens accepted",
			content: `{"type":"income","category":"reimbursement","scenario":"reimbursement",
				"merchant":"Acme Corp","description":"expense reimbursement","analysis":"Employer payout."}`,
			want: model.AnalysisResult{
				Type:        model.TypeIncome,
				Category:    model.CategoryReimbursement,
				Scenario:    model.ScenarioReimbursement,
				Merchant:    "Acme Corp",
				Description: "expense reimbursement",
				Analysis:    "Employer payout.",
			},
		},
		{
			name:    "not JSON at all",
			content: "I think this is probably a coffee purchase.",
			wantErr: true,
		},
		{
			name:    "missing scenario field",
			content: `{"type":"EXPENSE","category":"OTHER","merchant":"m","description":"d","analysis":"a"}`,
			wantErr: true,
		},
		{
			name:    "missing merchant field",
			content: `{"type":"EXPENSE","category":"OTHER","scenario":"REGULAR","description":"d","analysis":"a"}`,
			wantErr: true,
		},
		{
			name:    "category outside the closed set",
			content: `{"type":"EXPENSE","category":"CRYPTO","scenario":"REGULAR","merchant":"m","description":"d","analysis":"a"}`,
			wantErr: true,
		},
		{
			name:    "invalid type",
			content: `{"type":"DEBIT","category":"OTHER","scenario":"REGULAR","merchant":"m","description":"d","analysis":"a"}`,
			wantErr: true,
		},
		{
			name:    "invalid scenario",
			content: `{"type":"EXPENSE","category":"OTHER","scenario":"SOMETIMES","merchant":"m","description":"d","analysis":"a"}`,
			wantErr: true,
		},
		{
			name:    "empty response",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnalysis(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrClassificationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object untouched",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "leading and trailing prose",
			input: "Sure!\n{\"a\":1}\nHope that helps.",
			want:  `{"a":1}`,
		},
		{
			name:  "whitespace only trimmed",
			input: "   {\"a\":1}   ",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}
