package storage

import (
	"database/sql"
	"fmt"
)

// migration is one versioned schema change, applied inside a transaction.
type migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

var allMigrations = []migration{
	{Version: 1, Name: "initial_schema", Up: migration001InitialSchema},
	{Version: 2, Name: "add_duplicate_merges", Up: migration002AddDuplicateMerges},
}

func (s *Storage) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range allMigrations {
		if applied[m.Version] {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func migration001InitialSchema(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE ledger_transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_date TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			merchant_name TEXT,
			description TEXT,
			category TEXT,
			source_email_id TEXT
		)`,
		`CREATE TABLE upload_batches (
			id TEXT PRIMARY KEY,
			uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			row_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE bank_transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT NOT NULL,
			upload_batch_id TEXT REFERENCES upload_batches(id)
		)`,
		`CREATE INDEX idx_bank_transactions_date ON bank_transactions(date)`,
		`CREATE INDEX idx_ledger_transactions_date ON ledger_transactions(transaction_date)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func migration002AddDuplicateMerges(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE duplicate_merges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		merged_id INTEGER NOT NULL,
		member_ids TEXT NOT NULL,
		confidence REAL NOT NULL,
		rationale TEXT NOT NULL,
		merged_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}
