// Package recon implements the reconciliation engine: it compares ledger
// transactions (derived from parsed receipts) against bank transactions
// (uploaded as CSV) and produces a three-way partition — matched,
// ledger-only, bank-only — with a per-match confidence score.
//
// The engine is a pure batch computation over one snapshot of transactions.
// It does not fetch, persist, or render anything; storage and transport live
// in the infrastructure packages.
package recon

import "time"

// LedgerTransaction is a transaction recorded by the system of record,
// typically extracted from a receipt email. Merge may replace a group of
// these with a single synthetic record; the matcher never mutates them.
type LedgerTransaction struct {
	ID              int64     `json:"id"`
	TransactionDate time.Time `json:"transaction_date"`
	Amount          float64   `json:"amount"` // signed, expense = negative
	Currency        string    `json:"currency"`
	MerchantName    string    `json:"merchant_name,omitempty"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	SourceEmailID   string    `json:"source_email_id,omitempty"`
}

// BankTransaction is a single row from an uploaded bank statement.
// Immutable once ingested.
type BankTransaction struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"` // signed, debit = negative
	Description   string    `json:"description"`
	UploadBatchID string    `json:"upload_batch_id,omitempty"`
}

// ScoreBreakdown exposes the individual terms behind a composite confidence.
type ScoreBreakdown struct {
	Amount   float64 `json:"amount"`
	Date     float64 `json:"date"`
	Merchant float64 `json:"merchant"`
	Semantic float64 `json:"semantic,omitempty"`
}

// MatchCandidate is a scored (ledger, bank) pair. Candidates only exist
// during a single reconciliation run.
type MatchCandidate struct {
	LedgerID   int64
	BankID     int64
	Confidence float64
	Breakdown  ScoreBreakdown
	DayGap     int
	Exact      bool
}

// DuplicateGroup is a set of ledger transactions judged to describe one real
// purchase, collapsed to a single merged record before matching.
type DuplicateGroup struct {
	MemberIDs  []int64           `json:"member_ids"`
	Merged     LedgerTransaction `json:"merged"`
	Confidence float64           `json:"confidence"`
	Rationale  string            `json:"rationale"`
}

// MatchedPair is one accepted ledger↔bank assignment.
type MatchedPair struct {
	Ledger     LedgerTransaction `json:"ledger_transaction"`
	Bank       BankTransaction   `json:"bank_transaction"`
	Confidence float64           `json:"confidence"`
	MatchType  string            `json:"match_type"` // "exact" or "fuzzy"
	Breakdown  ScoreBreakdown    `json:"breakdown"`
}

// Match type values for MatchedPair.MatchType.
const (
	MatchTypeExact = "exact"
	MatchTypeFuzzy = "fuzzy"
)

// Summary holds aggregate statistics for one reconciliation run.
type Summary struct {
	TotalLedger      int      `json:"total_ledger"` // post-merge
	TotalBank        int      `json:"total_bank"`
	MatchedCount     int      `json:"matched_count"`
	LedgerOnlyCount  int      `json:"ledger_only_count"`
	BankOnlyCount    int      `json:"bank_only_count"`
	MatchPercentage  float64  `json:"match_percentage"`
	DuplicatesMerged int      `json:"duplicates_merged"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ComparisonResult is the complete outcome of a reconciliation run. The JSON
// field names are a contract with the dashboard and must stay stable.
type ComparisonResult struct {
	Matched         []MatchedPair       `json:"matched"`
	LedgerOnly      []LedgerTransaction `json:"ledger_only"`
	BankOnly        []BankTransaction   `json:"bank_only"`
	Summary         Summary             `json:"summary"`
	DuplicateGroups []DuplicateGroup    `json:"duplicate_groups,omitempty"`
}
