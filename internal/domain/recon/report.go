package recon

import "sort"

// buildResult aggregates the accepted assignment into the final
// ComparisonResult. Unmatched sides are emitted in ascending id order so the
// payload is byte-stable across runs.
func buildResult(
	ledger []LedgerTransaction,
	bank []BankTransaction,
	accepted []MatchCandidate,
	groups []DuplicateGroup,
	warnings []string,
) *ComparisonResult {
	ledgerByID := make(map[int64]LedgerTransaction, len(ledger))
	for _, tx := range ledger {
		ledgerByID[tx.ID] = tx
	}
	bankByID := make(map[int64]BankTransaction, len(bank))
	for _, tx := range bank {
		bankByID[tx.ID] = tx
	}

	matched := make([]MatchedPair, 0, len(accepted))
	usedLedger := make(map[int64]bool, len(accepted))
	usedBank := make(map[int64]bool, len(accepted))
	for _, c := range accepted {
		matchType := MatchTypeFuzzy
		if c.Exact {
			matchType = MatchTypeExact
		}
		matched = append(matched, MatchedPair{
			Ledger:     ledgerByID[c.LedgerID],
			Bank:       bankByID[c.BankID],
			Confidence: c.Confidence,
			MatchType:  matchType,
			Breakdown:  c.Breakdown,
		})
		usedLedger[c.LedgerID] = true
		usedBank[c.BankID] = true
	}

	ledgerOnly := make([]LedgerTransaction, 0)
	for _, tx := range ledger {
		if !usedLedger[tx.ID] {
			ledgerOnly = append(ledgerOnly, tx)
		}
	}
	sort.Slice(ledgerOnly, func(i, j int) bool { return ledgerOnly[i].ID < ledgerOnly[j].ID })

	bankOnly := make([]BankTransaction, 0)
	for _, tx := range bank {
		if !usedBank[tx.ID] {
			bankOnly = append(bankOnly, tx)
		}
	}
	sort.Slice(bankOnly, func(i, j int) bool { return bankOnly[i].ID < bankOnly[j].ID })

	duplicatesMerged := 0
	for _, g := range groups {
		duplicatesMerged += len(g.MemberIDs) - 1
	}

	summary := Summary{
		TotalLedger:      len(ledger),
		TotalBank:        len(bank),
		MatchedCount:     len(matched),
		LedgerOnlyCount:  len(ledgerOnly),
		BankOnlyCount:    len(bankOnly),
		DuplicatesMerged: duplicatesMerged,
		Warnings:         warnings,
	}
	if len(ledger) > 0 {
		summary.MatchPercentage = float64(len(matched)) / float64(len(ledger)) * 100
	}

	return &ComparisonResult{
		Matched:         matched,
		LedgerOnly:      ledgerOnly,
		BankOnly:        bankOnly,
		Summary:         summary,
		DuplicateGroups: groups,
	}
}
