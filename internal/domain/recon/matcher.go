package recon

import "sort"

// assign resolves all scored candidates into a unique assignment.
//
// Candidates are sorted descending by confidence, tie-broken by smaller day
// gap, then lower ledger id, then lower bank id, so two runs over identical
// inputs produce identical output. Assignment is greedy in that order: a
// candidate is accepted only when neither side has been taken yet.
//
// This is greedy bipartite matching, not a maximum-weight assignment: an
// earlier high-confidence pair can take a bank row that a later pair needed.
func assign(candidates []MatchCandidate, threshold float64) []MatchCandidate {
	eligible := make([]MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= threshold {
			eligible = append(eligible, c)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.DayGap != b.DayGap {
			return a.DayGap < b.DayGap
		}
		if a.LedgerID != b.LedgerID {
			return a.LedgerID < b.LedgerID
		}
		return a.BankID < b.BankID
	})

	usedLedger := make(map[int64]bool)
	usedBank := make(map[int64]bool)
	accepted := make([]MatchCandidate, 0, len(eligible))
	for _, c := range eligible {
		if usedLedger[c.LedgerID] || usedBank[c.BankID] {
			continue
		}
		usedLedger[c.LedgerID] = true
		usedBank[c.BankID] = true
		accepted = append(accepted, c)
	}
	return accepted
}
