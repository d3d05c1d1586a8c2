package storage

import (
	"time"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

// Repository defines the complete storage interface. Splitting it per
// concern keeps handlers and services narrow and makes the in-memory mock
// straightforward.
type Repository interface {
	LedgerRepository
	BankRepository
	MergeRepository
	Close() error
}

// LedgerRepository stores transactions extracted from receipts.
type LedgerRepository interface {
	// SaveLedgerTransaction inserts a ledger transaction and returns its id.
	SaveLedgerTransaction(tx *recon.LedgerTransaction) (int64, error)

	// ListLedgerTransactions returns all ledger transactions ordered by id.
	ListLedgerTransactions() ([]recon.LedgerTransaction, error)
}

// BankRepository stores uploaded bank statement rows.
type BankRepository interface {
	// SaveBankBatch inserts an upload batch and its rows in one transaction,
	// returning the rows with their assigned ids.
	SaveBankBatch(batch UploadBatch, txs []recon.BankTransaction) ([]recon.BankTransaction, error)

	// ListBankTransactions returns all bank transactions ordered by id.
	ListBankTransactions() ([]recon.BankTransaction, error)

	// ListUploadBatches returns recent upload batches, newest first.
	ListUploadBatches(limit int) ([]UploadBatch, error)
}

// MergeRepository persists applied duplicate-group merges.
type MergeRepository interface {
	// ApplyMerge removes the group's absorbed members and records the merge
	// as a single transaction. Re-applying the same group is a no-op since
	// the members no longer exist.
	ApplyMerge(group recon.DuplicateGroup) error

	// ListMerges returns recent merge records, newest first.
	ListMerges(limit int) ([]MergeRecord, error)
}

// UploadBatch describes one CSV upload.
type UploadBatch struct {
	ID         string    `json:"id"`
	UploadedAt time.Time `json:"uploaded_at"`
	RowCount   int       `json:"row_count"`
	ErrorCount int       `json:"error_count"`
}

// MergeRecord is the audit trail for one applied duplicate merge.
type MergeRecord struct {
	ID         int64     `json:"id"`
	MergedID   int64     `json:"merged_id"`
	MemberIDs  []int64   `json:"member_ids"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
	MergedAt   time.Time `json:"merged_at"`
}
