package recon

import "context"

// SemanticJudgment is the response of an external semantic comparison.
type SemanticJudgment struct {
	Confidence float64 `json:"confidence"` // in [0, 1]
	Reasoning  string  `json:"reasoning"`
}

// SemanticScorer judges whether two normalized text snippets name the same
// real-world merchant. Implementations are expected to be slow and fallible
// (an LLM call); the engine bounds every call with a timeout and falls back
// to the rule-based score when it fails.
type SemanticScorer interface {
	Score(ctx context.Context, a, b string) (SemanticJudgment, error)
}
