package model

// AnalysisResult is the classifier's verdict for a single transaction.
// It is transient: the orchestrator merges it into a Transaction before
// persistence.
type AnalysisResult struct {
	Merchant    string
	Description string
	Analysis    string
	Type        TransactionType
	Category    Category
	Scenario    Scenario
}

// FallbackAnalysis returns the deterministic default classification used
// whenever the LLM call fails or returns an unusable response.
func FallbackAnalysis() AnalysisResult {
	return AnalysisResult{
		Type:        TypeExpense,
		Category:    CategoryOther,
		Scenario:    ScenarioRegular,
		Merchant:    "unknown merchant",
		Description: "transaction",
		Analysis:    "AI analysis unavailable - default classification applied",
	}
}
