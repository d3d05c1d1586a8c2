package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_UniqueAssignment(t *testing.T) {
	candidates := []MatchCandidate{
		{LedgerID: 1, BankID: 10, Confidence: 0.9, DayGap: 1},
		{LedgerID: 1, BankID: 11, Confidence: 0.8, DayGap: 0},
		{LedgerID: 2, BankID: 10, Confidence: 0.85, DayGap: 0},
	}

	accepted := assign(candidates, 0.7)

	// Ledger 1 takes bank 10 (0.9); ledger 2's 0.85 for bank 10 is skipped,
	// leaving ledger 1's 0.8 alternative unused because ledger 1 is taken.
	require.Len(t, accepted, 1)
	assert.Equal(t, int64(1), accepted[0].LedgerID)
	assert.Equal(t, int64(10), accepted[0].BankID)
}

func TestAssign_SkippedCounterpartStaysAvailable(t *testing.T) {
	candidates := []MatchCandidate{
		{LedgerID: 1, BankID: 10, Confidence: 0.9},
		{LedgerID: 2, BankID: 10, Confidence: 0.85},
		{LedgerID: 2, BankID: 11, Confidence: 0.8},
	}

	accepted := assign(candidates, 0.7)

	require.Len(t, accepted, 2)
	assert.Equal(t, int64(10), accepted[0].BankID)
	assert.Equal(t, int64(2), accepted[1].LedgerID)
	assert.Equal(t, int64(11), accepted[1].BankID)
}

func TestAssign_ThresholdFloor(t *testing.T) {
	candidates := []MatchCandidate{
		{LedgerID: 1, BankID: 10, Confidence: 0.69},
		{LedgerID: 2, BankID: 11, Confidence: 0.7},
	}

	accepted := assign(candidates, 0.7)

	require.Len(t, accepted, 1)
	assert.Equal(t, int64(2), accepted[0].LedgerID)
}

func TestAssign_TieBreaks(t *testing.T) {
	// Identical confidence: smaller day gap wins, then lower ledger id,
	// then lower bank id.
	candidates := []MatchCandidate{
		{LedgerID: 2, BankID: 11, Confidence: 0.8, DayGap: 2},
		{LedgerID: 1, BankID: 12, Confidence: 0.8, DayGap: 1},
		{LedgerID: 1, BankID: 10, Confidence: 0.8, DayGap: 1},
	}

	accepted := assign(candidates, 0.7)

	require.Len(t, accepted, 2)
	assert.Equal(t, int64(1), accepted[0].LedgerID)
	assert.Equal(t, int64(10), accepted[0].BankID)
	assert.Equal(t, int64(2), accepted[1].LedgerID)
}

func TestAssign_DeterministicOrdering(t *testing.T) {
	candidates := []MatchCandidate{
		{LedgerID: 3, BankID: 12, Confidence: 0.75, DayGap: 2},
		{LedgerID: 1, BankID: 10, Confidence: 0.95, DayGap: 0},
		{LedgerID: 2, BankID: 11, Confidence: 0.85, DayGap: 1},
	}

	first := assign(candidates, 0.7)
	second := assign(candidates, 0.7)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), first[0].LedgerID, "sorted by confidence descending")
}
