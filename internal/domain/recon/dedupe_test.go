package recon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScorer is a deterministic SemanticScorer for tests.
type stubScorer struct {
	confidence float64
	reasoning  string
	err        error
	calls      int
}

func (s *stubScorer) Score(_ context.Context, _, _ string) (SemanticJudgment, error) {
	s.calls++
	if s.err != nil {
		return SemanticJudgment{}, s.err
	}
	return SemanticJudgment{Confidence: s.confidence, Reasoning: s.reasoning}, nil
}

func makeLedger(id int64, amount float64, date string, merchant string) LedgerTransaction {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return LedgerTransaction{
		ID:              id,
		TransactionDate: d,
		Amount:          amount,
		Currency:        "USD",
		MerchantName:    merchant,
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func TestDetectDuplicates_MergesIdenticalPair(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -42.50, "2024-03-01", "Coffee Shop"),
	}

	deduped, groups, warnings := e.DetectDuplicates(context.Background(), ledger)

	require.Len(t, deduped, 1)
	require.Len(t, groups, 1)
	assert.Empty(t, warnings)

	// Representative is the lowest id.
	assert.Equal(t, int64(1), deduped[0].ID)
	assert.Equal(t, []int64{1, 2}, groups[0].MemberIDs)
	assert.Equal(t, 1.0, groups[0].Confidence)
	assert.Contains(t, groups[0].Rationale, "2 transactions")
}

func TestDetectDuplicates_TransitiveGrouping(t *testing.T) {
	e := newTestEngine(t)

	// 1↔2 same day, 2↔3 next day, 1↔3 two days apart (outside window).
	// Union-find must still collapse all three into one group.
	ledger := []LedgerTransaction{
		makeLedger(1, -10.00, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -10.00, "2024-03-02", "Coffee Shop"),
		makeLedger(3, -10.00, "2024-03-03", "Coffee Shop"),
	}

	deduped, groups, _ := e.DetectDuplicates(context.Background(), ledger)

	require.Len(t, deduped, 1)
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2, 3}, groups[0].MemberIDs)

	// One of three pairwise checks (1↔3) fails the date window.
	assert.InDelta(t, 2.0/3.0, groups[0].Confidence, 0.0001)
}

func TestDetectDuplicates_DistinctTransactionsUntouched(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -99.00, "2024-03-01", "Coffee Shop"),  // different amount
		makeLedger(3, -42.50, "2024-03-10", "Coffee Shop"),  // far apart in time
		makeLedger(4, -42.50, "2024-03-01", "Gas Station"),  // different merchant
	}

	deduped, groups, _ := e.DetectDuplicates(context.Background(), ledger)

	assert.Len(t, deduped, 4)
	assert.Empty(t, groups)
}

func TestDetectDuplicates_Idempotent(t *testing.T) {
	e := newTestEngine(t)

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(2, -42.50, "2024-03-01", "Coffee Shop"),
		makeLedger(5, -10.00, "2024-03-04", "Bakery"),
	}

	firstPass, groups, _ := e.DetectDuplicates(context.Background(), ledger)
	require.Len(t, groups, 1)

	secondPass, groups2, _ := e.DetectDuplicates(context.Background(), firstPass)
	assert.Empty(t, groups2, "second pass must not find new merges")
	assert.Equal(t, firstPass, secondPass)
}

func TestDetectDuplicates_MergeConflictMixedCurrencies(t *testing.T) {
	e := newTestEngine(t)

	a := makeLedger(1, -42.50, "2024-03-01", "Coffee Shop")
	b := makeLedger(2, -42.50, "2024-03-01", "Coffee Shop")
	b.Currency = "EUR"

	deduped, groups, warnings := e.DetectDuplicates(context.Background(), []LedgerTransaction{a, b})

	// Group is left unmerged; both members pass through individually.
	assert.Len(t, deduped, 2)
	assert.Empty(t, groups)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "mixed currencies")
}

func TestDetectDuplicates_SemanticArbitration(t *testing.T) {
	scorer := &stubScorer{confidence: 0.95, reasoning: "same merchant, different receipt wording"}
	e := newTestEngine(t, WithSemanticScorer(scorer))

	// Token overlap is 0.75: below the 0.8 threshold but inside the
	// arbitration band, so the semantic scorer gets the final word.
	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Blue Bottle Coffee Oakland"),
		makeLedger(2, -42.50, "2024-03-01", "Blue Bottle Coffee"),
	}

	_, groups, _ := e.DetectDuplicates(context.Background(), ledger)

	require.Len(t, groups, 1)
	assert.Positive(t, scorer.calls)
}

func TestDetectDuplicates_SemanticFailureFallsBack(t *testing.T) {
	scorer := &stubScorer{err: errors.New("timeout")}
	e := newTestEngine(t, WithSemanticScorer(scorer))

	ledger := []LedgerTransaction{
		makeLedger(1, -42.50, "2024-03-01", "Blue Bottle Coffee Oakland"),
		makeLedger(2, -42.50, "2024-03-01", "Blue Bottle Coffee"),
	}

	deduped, groups, _ := e.DetectDuplicates(context.Background(), ledger)

	// Rule-based verdict (below threshold) wins when the scorer is down;
	// the pipeline keeps going.
	assert.Len(t, deduped, 2)
	assert.Empty(t, groups)
}

func TestDetectDuplicates_EmptyAndSingle(t *testing.T) {
	e := newTestEngine(t)

	deduped, groups, warnings := e.DetectDuplicates(context.Background(), nil)
	assert.Empty(t, deduped)
	assert.Empty(t, groups)
	assert.Empty(t, warnings)

	one := []LedgerTransaction{makeLedger(1, -5, "2024-03-01", "Bakery")}
	deduped, groups, _ = e.DetectDuplicates(context.Background(), one)
	assert.Len(t, deduped, 1)
	assert.Empty(t, groups)
}

func makeBank(id int64, amount float64, date string, description string) BankTransaction {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return BankTransaction{ID: id, Date: d, Amount: amount, Description: description}
}
