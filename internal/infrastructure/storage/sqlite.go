package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

const dateLayout = "2006-01-02"

// Storage provides SQLite-backed persistence for ledger and bank
// transactions. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository.
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the database and runs pending migrations.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveLedgerTransaction inserts a ledger transaction and returns its id.
func (s *Storage) SaveLedgerTransaction(tx *recon.LedgerTransaction) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO ledger_transactions
		(transaction_date, amount, currency, merchant_name, description, category, source_email_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.TransactionDate.Format(dateLayout),
		tx.Amount,
		tx.Currency,
		tx.MerchantName,
		tx.Description,
		tx.Category,
		tx.SourceEmailID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting ledger transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	tx.ID = id
	return id, nil
}

// ListLedgerTransactions returns all ledger transactions ordered by id.
func (s *Storage) ListLedgerTransactions() ([]recon.LedgerTransaction, error) {
	rows, err := s.db.Query(`
		SELECT id, transaction_date, amount, currency,
		       COALESCE(merchant_name, ''), COALESCE(description, ''),
		       COALESCE(category, ''), COALESCE(source_email_id, '')
		FROM ledger_transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger transactions: %w", err)
	}
	defer rows.Close()

	var txs []recon.LedgerTransaction
	for rows.Next() {
		var tx recon.LedgerTransaction
		var date string
		if err := rows.Scan(&tx.ID, &date, &tx.Amount, &tx.Currency,
			&tx.MerchantName, &tx.Description, &tx.Category, &tx.SourceEmailID); err != nil {
			return nil, err
		}
		tx.TransactionDate, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SaveBankBatch inserts the batch header and all rows in one transaction and
// returns the rows with their database-assigned ids.
func (s *Storage) SaveBankBatch(batch UploadBatch, txs []recon.BankTransaction) ([]recon.BankTransaction, error) {
	dbTx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	if _, err := dbTx.Exec(`
		INSERT INTO upload_batches (id, uploaded_at, row_count, error_count)
		VALUES (?, ?, ?, ?)`,
		batch.ID, batch.UploadedAt.UTC(), batch.RowCount, batch.ErrorCount,
	); err != nil {
		return nil, fmt.Errorf("inserting upload batch: %w", err)
	}

	stmt, err := dbTx.Prepare(`
		INSERT INTO bank_transactions (date, amount, description, upload_batch_id)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	saved := make([]recon.BankTransaction, 0, len(txs))
	for _, tx := range txs {
		res, err := stmt.Exec(tx.Date.Format(dateLayout), tx.Amount, tx.Description, batch.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting bank transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		tx.ID = id
		tx.UploadBatchID = batch.ID
		saved = append(saved, tx)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// ListBankTransactions returns all bank transactions ordered by id.
func (s *Storage) ListBankTransactions() ([]recon.BankTransaction, error) {
	rows, err := s.db.Query(`
		SELECT id, date, amount, description, COALESCE(upload_batch_id, '')
		FROM bank_transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []recon.BankTransaction
	for rows.Next() {
		var tx recon.BankTransaction
		var date string
		if err := rows.Scan(&tx.ID, &date, &tx.Amount, &tx.Description, &tx.UploadBatchID); err != nil {
			return nil, err
		}
		tx.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// ListUploadBatches returns recent upload batches, newest first.
func (s *Storage) ListUploadBatches(limit int) ([]UploadBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, uploaded_at, row_count, error_count
		FROM upload_batches ORDER BY uploaded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []UploadBatch
	for rows.Next() {
		var b UploadBatch
		if err := rows.Scan(&b.ID, &b.UploadedAt, &b.RowCount, &b.ErrorCount); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// ApplyMerge persists one duplicate-group merge as a single transaction:
// absorbed members are deleted and an audit row records the merge. The
// representative row (the merged transaction's id) is kept. Re-applying an
// already-applied group deletes nothing and is safe.
func (s *Storage) ApplyMerge(group recon.DuplicateGroup) error {
	memberJSON, err := json.Marshal(group.MemberIDs)
	if err != nil {
		return err
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = dbTx.Rollback() }()

	for _, id := range group.MemberIDs {
		if id == group.Merged.ID {
			continue
		}
		if _, err := dbTx.Exec(`DELETE FROM ledger_transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting absorbed transaction %d: %w", id, err)
		}
	}

	if _, err := dbTx.Exec(`
		INSERT INTO duplicate_merges (merged_id, member_ids, confidence, rationale)
		VALUES (?, ?, ?, ?)`,
		group.Merged.ID, string(memberJSON), group.Confidence, group.Rationale,
	); err != nil {
		return fmt.Errorf("recording merge: %w", err)
	}

	return dbTx.Commit()
}

// ListMerges returns recent merge records, newest first.
func (s *Storage) ListMerges(limit int) ([]MergeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, merged_id, member_ids, confidence, rationale, merged_at
		FROM duplicate_merges ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merges []MergeRecord
	for rows.Next() {
		var m MergeRecord
		var memberJSON string
		if err := rows.Scan(&m.ID, &m.MergedID, &memberJSON, &m.Confidence, &m.Rationale, &m.MergedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(memberJSON), &m.MemberIDs); err != nil {
			return nil, fmt.Errorf("stored member ids %q: %w", memberJSON, err)
		}
		merges = append(merges, m)
	}
	return merges, rows.Err()
}
