package recon

import (
	"math"
	"time"
)

// Weights controls the composite confidence formula. The three weights must
// be non-negative and sum to 1.
type Weights struct {
	Amount   float64 `json:"amount"`
	Date     float64 `json:"date"`
	Merchant float64 `json:"merchant"`
}

// Config holds every tuning knob of the engine. It is an explicit input to
// each engine instance, never process-wide state, so concurrent runs with
// different settings cannot interfere.
type Config struct {
	// Candidate generation
	DateWindowDays     int     `json:"date_window_days"`
	AmountTolerance    float64 `json:"amount_tolerance"`
	AmountTolerancePct float64 `json:"amount_tolerance_pct"`

	// Matching
	MatchThreshold         float64 `json:"match_threshold"`
	PerfectMatchConfidence float64 `json:"perfect_match_confidence"`
	Weights                Weights `json:"weights"`

	// Duplicate detection
	DuplicateSimilarity     float64 `json:"duplicate_similarity"`
	DuplicateDateWindowDays int     `json:"duplicate_date_window_days"`
	DuplicateAmountEpsilon  float64 `json:"duplicate_amount_epsilon"`

	// External semantic scoring
	SemanticTimeout time.Duration `json:"semantic_timeout"`

	// Scoring fan-out; <= 0 means a sensible default.
	Workers int `json:"workers"`
}

// DefaultConfig returns the starting-point tuning values. They are
// illustrative defaults, not load-bearing constants; hosts are expected to
// tune them.
func DefaultConfig() Config {
	return Config{
		DateWindowDays:          3,
		AmountTolerance:         0.01,
		AmountTolerancePct:      0.02,
		MatchThreshold:          0.7,
		PerfectMatchConfidence:  1.0,
		Weights:                 Weights{Amount: 0.5, Date: 0.3, Merchant: 0.2},
		DuplicateSimilarity:     0.8,
		DuplicateDateWindowDays: 1,
		DuplicateAmountEpsilon:  0.01,
		SemanticTimeout:         10 * time.Second,
		Workers:                 4,
	}
}

const weightSumEpsilon = 1e-9

// Validate checks every knob and returns a ConfigError for the first value
// outside its valid range.
func (c Config) Validate() error {
	if c.DateWindowDays < 0 {
		return &ConfigError{Field: "date_window_days", Reason: "must be >= 0"}
	}
	if c.AmountTolerance < 0 {
		return &ConfigError{Field: "amount_tolerance", Reason: "must be >= 0"}
	}
	if c.AmountTolerancePct < 0 || c.AmountTolerancePct >= 1 {
		return &ConfigError{Field: "amount_tolerance_pct", Reason: "must be in [0, 1)"}
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return &ConfigError{Field: "match_threshold", Reason: "must be in [0, 1]"}
	}
	if c.PerfectMatchConfidence < c.MatchThreshold || c.PerfectMatchConfidence > 1 {
		return &ConfigError{Field: "perfect_match_confidence", Reason: "must be in [match_threshold, 1]"}
	}
	if c.Weights.Amount < 0 || c.Weights.Date < 0 || c.Weights.Merchant < 0 {
		return &ConfigError{Field: "weights", Reason: "must be non-negative"}
	}
	if sum := c.Weights.Amount + c.Weights.Date + c.Weights.Merchant; math.Abs(sum-1) > weightSumEpsilon {
		return &ConfigError{Field: "weights", Reason: "must sum to 1"}
	}
	if c.DuplicateSimilarity < 0 || c.DuplicateSimilarity > 1 {
		return &ConfigError{Field: "duplicate_similarity", Reason: "must be in [0, 1]"}
	}
	if c.DuplicateDateWindowDays < 0 {
		return &ConfigError{Field: "duplicate_date_window_days", Reason: "must be >= 0"}
	}
	if c.DuplicateAmountEpsilon < 0 {
		return &ConfigError{Field: "duplicate_amount_epsilon", Reason: "must be >= 0"}
	}
	if c.SemanticTimeout < 0 {
		return &ConfigError{Field: "semantic_timeout", Reason: "must be >= 0"}
	}
	return nil
}
