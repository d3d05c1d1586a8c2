package recon

import (
	"math"
	"sort"
)

// bankIndex holds bank transactions sorted by date so the candidate prefilter
// can binary-search the date window instead of scanning every row. For
// realistic date-clustered data this keeps scoring near-linear.
type bankIndex struct {
	txs []BankTransaction // sorted by (date, id)
}

func newBankIndex(bank []BankTransaction) *bankIndex {
	txs := append([]BankTransaction(nil), bank...)
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
	return &bankIndex{txs: txs}
}

// candidates returns every bank transaction within the date window and the
// amount tolerance of the given ledger transaction. An empty result means the
// ledger transaction is ledger-only and the scorer is never invoked for it.
func (idx *bankIndex) candidates(tx LedgerTransaction, cfg Config) []BankTransaction {
	from := tx.TransactionDate.AddDate(0, 0, -cfg.DateWindowDays)
	to := tx.TransactionDate.AddDate(0, 0, cfg.DateWindowDays)

	start := sort.Search(len(idx.txs), func(i int) bool {
		return !idx.txs[i].Date.Before(from)
	})

	var out []BankTransaction
	for i := start; i < len(idx.txs) && !idx.txs[i].Date.After(to); i++ {
		if amountWithinTolerance(tx.Amount, idx.txs[i].Amount, cfg) {
			out = append(out, idx.txs[i])
		}
	}
	return out
}

// amountWithinTolerance accepts an exact match within the absolute tolerance
// or a difference inside the percentage tolerance, which allows for tips and
// card fees.
func amountWithinTolerance(ledgerAmount, bankAmount float64, cfg Config) bool {
	diff := math.Abs(ledgerAmount - bankAmount)
	if diff <= cfg.AmountTolerance {
		return true
	}
	if cfg.AmountTolerancePct > 0 && diff <= cfg.AmountTolerancePct*math.Abs(ledgerAmount) {
		return true
	}
	return false
}
