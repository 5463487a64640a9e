package model

// CallRecord captures token usage for one per-section LLM call.
type CallRecord struct {
	Section      string `json:"section"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TokenUsage tracks aggregate token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
}

// TotalUsage sums token usage across call records.
func TotalUsage(calls []CallRecord) TokenUsage {
	var total TokenUsage
	for _, c := range calls {
		total.InputTokens += c.InputTokens
		total.OutputTokens += c.OutputTokens
	}
	return total
}
