package service

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerlens/backend/internal/domain/recon"
	"github.com/ledgerlens/backend/internal/infrastructure/storage"
	"github.com/ledgerlens/backend/internal/ingest"
	"github.com/ledgerlens/backend/internal/observability"
)

// UploadResult summarizes one statement upload: how many rows were saved and
// which rows could not be parsed.
type UploadResult struct {
	BatchID string            `json:"batch_id"`
	Created int               `json:"created"`
	Errors  []ingest.RowError `json:"errors,omitempty"`
}

// UploadService ingests bank statement CSVs into storage.
type UploadService struct {
	storage storage.Repository
	logger  *slog.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(store storage.Repository, logger *slog.Logger) *UploadService {
	return &UploadService{storage: store, logger: logger}
}

// UploadBankCSV parses the statement and saves all parseable rows under a
// fresh batch id. Bad rows are reported per-row, never aborting the upload;
// only an unreadable file (or a storage failure) is an error.
func (s *UploadService) UploadBankCSV(r io.Reader) (*UploadResult, error) {
	batchID := uuid.New().String()

	txs, rowErrors, err := ingest.ParseBankCSV(r, batchID)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	batch := storage.UploadBatch{
		ID:         batchID,
		UploadedAt: time.Now().UTC(),
		RowCount:   len(txs),
		ErrorCount: len(rowErrors),
	}
	saved, err := s.storage.SaveBankBatch(batch, txs)
	if err != nil {
		return nil, fmt.Errorf("saving batch %s: %w", batchID, err)
	}

	observability.UploadRows.WithLabelValues("saved").Add(float64(len(saved)))
	observability.UploadRows.WithLabelValues("error").Add(float64(len(rowErrors)))
	s.logger.Info("bank statement uploaded",
		"batch_id", batchID,
		"created", len(saved),
		"row_errors", len(rowErrors),
	)

	return &UploadResult{BatchID: batchID, Created: len(saved), Errors: rowErrors}, nil
}

// ListBankTransactions returns all stored bank transactions.
func (s *UploadService) ListBankTransactions() ([]recon.BankTransaction, error) {
	return s.storage.ListBankTransactions()
}

// ListLedgerTransactions returns all stored ledger transactions.
func (s *UploadService) ListLedgerTransactions() ([]recon.LedgerTransaction, error) {
	return s.storage.ListLedgerTransactions()
}

// ListUploadBatches returns recent upload batches, newest first.
func (s *UploadService) ListUploadBatches(limit int) ([]storage.UploadBatch, error) {
	return s.storage.ListUploadBatches(limit)
}
