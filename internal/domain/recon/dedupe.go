package recon

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// unionFind is a plain disjoint-set with path compression, used to build
// connected components over the pairwise-similarity graph so transitive
// duplicates land in one group.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// semanticArbitrationBand is how far below the duplicate-similarity threshold
// a merchant score may sit and still be handed to the semantic scorer for a
// second opinion.
const semanticArbitrationBand = 0.2

// DetectDuplicates partitions the ledger into duplicate groups and returns
// the deduplicated ledger (each group of size > 1 replaced by its merged
// representative), the groups themselves, and any merge-conflict warnings.
//
// Two transactions are considered duplicates when their amounts differ by at
// most the configured epsilon, their dates sit within the duplicate date
// window, and their merchant text similarity clears the duplicate threshold.
// Borderline merchant similarity is arbitrated by the semantic scorer when
// one is configured; scorer failure falls back to the rule-based verdict so
// the pipeline never blocks. Running the detector on its own output is a
// no-op: merged members no longer individually exist.
func (e *Engine) DetectDuplicates(ctx context.Context, ledger []LedgerTransaction) ([]LedgerTransaction, []DuplicateGroup, []string) {
	if len(ledger) < 2 {
		return append([]LedgerTransaction(nil), ledger...), nil, nil
	}

	// Deterministic processing order.
	txs := append([]LedgerTransaction(nil), ledger...)
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })

	uf := newUnionFind(len(txs))
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			if e.isDuplicatePair(ctx, txs[i], txs[j]) {
				uf.union(i, j)
			}
		}
	}

	components := make(map[int][]int)
	for i := range txs {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	roots := make([]int, 0, len(components))
	for root := range components {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	deduped := make([]LedgerTransaction, 0, len(txs))
	var groups []DuplicateGroup
	var warnings []string

	for _, root := range roots {
		members := components[root]
		if len(members) == 1 {
			deduped = append(deduped, txs[members[0]])
			continue
		}

		group, err := e.buildGroup(ctx, txs, members)
		if err != nil {
			// MergeConflict: members pass through individually.
			warnings = append(warnings, err.Error())
			for _, m := range members {
				deduped = append(deduped, txs[m])
			}
			continue
		}
		deduped = append(deduped, group.Merged)
		groups = append(groups, group)
	}

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ID < deduped[j].ID })
	return deduped, groups, warnings
}

// isDuplicatePair applies the three pairwise checks: amount epsilon, date
// window, merchant similarity (with optional semantic arbitration).
func (e *Engine) isDuplicatePair(ctx context.Context, a, b LedgerTransaction) bool {
	if math.Abs(a.Amount-b.Amount) > e.cfg.DuplicateAmountEpsilon {
		return false
	}
	if DayGap(a.TransactionDate, b.TransactionDate) > e.cfg.DuplicateDateWindowDays {
		return false
	}
	sim := TokenOverlap(merchantText(a), merchantText(b))
	if sim >= e.cfg.DuplicateSimilarity {
		return true
	}
	if e.semantic == nil || sim < e.cfg.DuplicateSimilarity-semanticArbitrationBand {
		return false
	}
	judgment, err := e.semanticScore(ctx, merchantText(a), merchantText(b))
	if err != nil {
		// ScoringUnavailable: keep the rule-based verdict.
		return false
	}
	return judgment.Confidence >= e.cfg.DuplicateSimilarity
}

// buildGroup constructs the merged representative for one component. The
// representative is always the member with the lowest id, so re-running the
// detector over already-merged output cannot produce a different record.
func (e *Engine) buildGroup(ctx context.Context, txs []LedgerTransaction, members []int) (DuplicateGroup, error) {
	ids := make([]int64, 0, len(members))
	currency := txs[members[0]].Currency
	for _, m := range members {
		ids = append(ids, txs[m].ID)
		if txs[m].Currency != currency {
			sortTransactionIDs(ids)
			return DuplicateGroup{}, &MergeConflict{MemberIDs: ids, Reason: "members have mixed currencies"}
		}
	}
	sortTransactionIDs(ids)

	// members is already ordered by id (txs is sorted), so the first member
	// is the representative.
	rep := txs[members[0]]

	passed, total := 0, 0
	amountOK, dateOK, merchantOK := true, true, true
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := txs[members[i]], txs[members[j]]
			total++
			pairAmount := math.Abs(a.Amount-b.Amount) <= e.cfg.DuplicateAmountEpsilon
			pairDate := DayGap(a.TransactionDate, b.TransactionDate) <= e.cfg.DuplicateDateWindowDays
			pairMerchant := TokenOverlap(merchantText(a), merchantText(b)) >= e.cfg.DuplicateSimilarity
			if pairAmount && pairDate && pairMerchant {
				passed++
			}
			amountOK = amountOK && pairAmount
			dateOK = dateOK && pairDate
			merchantOK = merchantOK && pairMerchant
		}
	}

	confidence := 1.0
	if total > 0 {
		confidence = float64(passed) / float64(total)
	}

	return DuplicateGroup{
		MemberIDs:  ids,
		Merged:     rep,
		Confidence: confidence,
		Rationale:  mergeRationale(len(members), amountOK, dateOK, merchantOK, e.cfg),
	}, nil
}

func mergeRationale(size int, amountOK, dateOK, merchantOK bool, cfg Config) string {
	fields := make([]string, 0, 3)
	if amountOK {
		fields = append(fields, fmt.Sprintf("amounts within %.2f", cfg.DuplicateAmountEpsilon))
	}
	if dateOK {
		fields = append(fields, fmt.Sprintf("dates within %d day(s)", cfg.DuplicateDateWindowDays))
	}
	if merchantOK {
		fields = append(fields, fmt.Sprintf("merchant similarity >= %.2f", cfg.DuplicateSimilarity))
	}
	if len(fields) == 0 {
		return fmt.Sprintf("%d transactions linked transitively", size)
	}
	return fmt.Sprintf("%d transactions: %s", size, strings.Join(fields, ", "))
}

// merchantText picks the best available text for similarity comparison:
// the merchant name when present, otherwise the free-text description.
func merchantText(tx LedgerTransaction) string {
	if tx.MerchantName != "" {
		return tx.MerchantName
	}
	return tx.Description
}
