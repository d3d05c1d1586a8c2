package recon

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative date window", func(c *Config) { c.DateWindowDays = -1 }, "date_window_days"},
		{"negative tolerance", func(c *Config) { c.AmountTolerance = -0.01 }, "amount_tolerance"},
		{"threshold above one", func(c *Config) { c.MatchThreshold = 1.5 }, "match_threshold"},
		{"weights not summing to one", func(c *Config) { c.Weights = Weights{Amount: 0.5, Date: 0.5, Merchant: 0.5} }, "weights"},
		{"negative weight", func(c *Config) { c.Weights = Weights{Amount: 1.2, Date: -0.2, Merchant: 0} }, "weights"},
		{"duplicate similarity out of range", func(c *Config) { c.DuplicateSimilarity = 1.1 }, "duplicate_similarity"},
		{"perfect match below threshold", func(c *Config) { c.PerfectMatchConfidence = 0.5 }, "perfect_match_confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			_, err := New(cfg)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestReconcile_ExactMatch(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{makeLedger(1, -42.50, "2024-03-01", "Coffee Shop")}
	bank := []BankTransaction{makeBank(10, -42.50, "2024-03-01", "COFFEE SHOP #102")}

	result := e.Reconcile(context.Background(), ledger, bank)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, MatchTypeExact, result.Matched[0].MatchType)
	assert.Equal(t, e.cfg.PerfectMatchConfidence, result.Matched[0].Confidence)
	assert.Empty(t, result.LedgerOnly)
	assert.Empty(t, result.BankOnly)
	assert.Equal(t, 100.0, result.Summary.MatchPercentage)
}

func TestReconcile_FuzzyMatchWithinWindow(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{makeLedger(1, -100.00, "2024-03-05", "")}
	bank := []BankTransaction{makeBank(10, -100.00, "2024-03-08", "SOME STORE")}

	result := e.Reconcile(context.Background(), ledger, bank)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, MatchTypeFuzzy, result.Matched[0].MatchType)
	assert.GreaterOrEqual(t, result.Matched[0].Confidence, e.cfg.MatchThreshold)
	assert.Less(t, result.Matched[0].Confidence, e.cfg.PerfectMatchConfidence)
}

func TestReconcile_DuplicatesMergedBeforeMatching(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -42.50, "2024-03-01", "Coffee Shop"),
	}
	bank := []BankTransaction{makeBank(10, -42.50, "2024-03-01", "COFFEE SHOP")}

	result := e.Reconcile(context.Background(), ledger, bank)

	assert.Equal(t, 1, result.Summary.TotalLedger, "post-merge ledger count")
	assert.Equal(t, 1, result.Summary.DuplicatesMerged)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, int64(1), result.Matched[0].Ledger.ID)
	assert.Empty(t, result.LedgerOnly)
}

func TestReconcile_BankOnly(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{makeLedger(1, -42.50, "2024-03-01", "Coffee Shop")}
	bank := []BankTransaction{
		makeBank(10, -42.50, "2024-03-01", "COFFEE SHOP"),
		makeBank(11, -500.00, "2024-03-02", "RENT PAYMENT"),
	}

	result := e.Reconcile(context.Background(), ledger, bank)

	require.Len(t, result.BankOnly, 1)
	assert.Equal(t, int64(11), result.BankOnly[0].ID)
	assert.Equal(t, 100.0, result.Summary.MatchPercentage, "unmatched bank rows do not change the denominator")
}

func TestReconcile_PartitionCompleteness(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -42.50, "2024-03-01", "Coffee Shop"), // duplicate of 1
		makeLedger(3, -100.00, "2024-03-05", "Grocer"),
		makeLedger(4, -7.25, "2024-02-10", "Newsstand"),
	}
	bank := []BankTransaction{
		makeBank(10, -42.50, "2024-03-01", "COFFEE SHOP"),
		makeBank(11, -100.00, "2024-03-06", "GROCER MARKET"),
		makeBank(12, -999.99, "2024-03-07", "AIRLINE TICKETS"),
	}

	result := e.Reconcile(context.Background(), ledger, bank)

	s := result.Summary
	assert.Equal(t, s.TotalLedger, s.MatchedCount+s.LedgerOnlyCount)
	assert.Equal(t, s.TotalBank, s.MatchedCount+s.BankOnlyCount)

	seenLedger := make(map[int64]bool)
	seenBank := make(map[int64]bool)
	for _, m := range result.Matched {
		assert.False(t, seenLedger[m.Ledger.ID], "ledger id matched twice")
		assert.False(t, seenBank[m.Bank.ID], "bank id matched twice")
		seenLedger[m.Ledger.ID] = true
		seenBank[m.Bank.ID] = true
		assert.GreaterOrEqual(t, m.Confidence, e.cfg.MatchThreshold)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 8

	e, err := New(cfg)
	require.NoError(t, err)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -42.50, "2024-03-02", "Coffee Shoppe"),
		makeLedger(3, -100.00, "2024-03-05", "Grocer"),
		makeLedger(4, -100.00, "2024-03-06", "Grocer Downtown"),
		makeLedger(5, -7.25, "2024-03-06", "Newsstand"),
	}
	bank := []BankTransaction{
		makeBank(10, -42.50, "2024-03-01", "COFFEE SHOP"),
		makeBank(11, -42.50, "2024-03-02", "COFFEE SHOPPE 44"),
		makeBank(12, -100.00, "2024-03-05", "GROCER"),
		makeBank(13, -100.00, "2024-03-06", "GROCER DOWNTOWN"),
	}

	first, err := json.Marshal(e.Reconcile(context.Background(), ledger, bank))
	require.NoError(t, err)
	second, err := json.Marshal(e.Reconcile(context.Background(), ledger, bank))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "two runs must be byte-identical")
}

func TestReconcile_NoCandidatesSkipsScorer(t *testing.T) {
	// A ledger row with no prefilter candidates must never reach the
	// external scorer.
	scorer := &stubScorer{confidence: 0.9}
	e := newTestEngine(t, WithSemanticScorer(scorer))

	ledger := []LedgerTransaction{makeLedger(1, -42.50, "2024-03-01", "Coffee Shop")}
	bank := []BankTransaction{makeBank(10, -900.00, "2024-01-01", "RENT")}

	result := e.Reconcile(context.Background(), ledger, bank)

	assert.Zero(t, scorer.calls)
	require.Len(t, result.LedgerOnly, 1)
	require.Len(t, result.BankOnly, 1)
	assert.Equal(t, 0.0, result.Summary.MatchPercentage)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	e := newTestEngine(t)

	result := e.Reconcile(context.Background(), nil, nil)

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.LedgerOnly)
	assert.Empty(t, result.BankOnly)
	assert.Equal(t, 0.0, result.Summary.MatchPercentage)
}
