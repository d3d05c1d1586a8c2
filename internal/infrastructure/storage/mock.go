package storage

import (
	"sort"
	"time"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

// MockRepository is an in-memory Repository for tests. Error fields, when
// set, are returned by the corresponding method.
type MockRepository struct {
	Ledger  []recon.LedgerTransaction
	Bank    []recon.BankTransaction
	Batches []UploadBatch
	Merges  []MergeRecord

	SaveLedgerErr error
	SaveBatchErr  error
	ApplyMergeErr error
	ListErr       error

	SaveLedgerCalled bool
	SaveBatchCalled  bool
	ApplyMergeCalled bool

	nextLedgerID int64
	nextBankID   int64
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository returns an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{nextLedgerID: 1, nextBankID: 1}
}

func (m *MockRepository) SaveLedgerTransaction(tx *recon.LedgerTransaction) (int64, error) {
	m.SaveLedgerCalled = true
	if m.SaveLedgerErr != nil {
		return 0, m.SaveLedgerErr
	}
	if m.nextLedgerID == 0 {
		m.nextLedgerID = 1
	}
	tx.ID = m.nextLedgerID
	m.nextLedgerID++
	m.Ledger = append(m.Ledger, *tx)
	return tx.ID, nil
}

func (m *MockRepository) ListLedgerTransactions() ([]recon.LedgerTransaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]recon.LedgerTransaction, len(m.Ledger))
	copy(out, m.Ledger)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) SaveBankBatch(batch UploadBatch, txs []recon.BankTransaction) ([]recon.BankTransaction, error) {
	m.SaveBatchCalled = true
	if m.SaveBatchErr != nil {
		return nil, m.SaveBatchErr
	}
	if batch.UploadedAt.IsZero() {
		batch.UploadedAt = time.Now().UTC()
	}
	m.Batches = append(m.Batches, batch)

	if m.nextBankID == 0 {
		m.nextBankID = 1
	}
	saved := make([]recon.BankTransaction, 0, len(txs))
	for _, tx := range txs {
		tx.ID = m.nextBankID
		m.nextBankID++
		tx.UploadBatchID = batch.ID
		m.Bank = append(m.Bank, tx)
		saved = append(saved, tx)
	}
	return saved, nil
}

func (m *MockRepository) ListBankTransactions() ([]recon.BankTransaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]recon.BankTransaction, len(m.Bank))
	copy(out, m.Bank)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) ListUploadBatches(limit int) ([]UploadBatch, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]UploadBatch, len(m.Batches))
	copy(out, m.Batches)
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) ApplyMerge(group recon.DuplicateGroup) error {
	m.ApplyMergeCalled = true
	if m.ApplyMergeErr != nil {
		return m.ApplyMergeErr
	}

	absorbed := make(map[int64]bool)
	for _, id := range group.MemberIDs {
		if id != group.Merged.ID {
			absorbed[id] = true
		}
	}
	kept := m.Ledger[:0]
	for _, tx := range m.Ledger {
		if !absorbed[tx.ID] {
			kept = append(kept, tx)
		}
	}
	m.Ledger = kept

	m.Merges = append(m.Merges, MergeRecord{
		ID:         int64(len(m.Merges) + 1),
		MergedID:   group.Merged.ID,
		MemberIDs:  append([]int64(nil), group.MemberIDs...),
		Confidence: group.Confidence,
		Rationale:  group.Rationale,
		MergedAt:   time.Now().UTC(),
	})
	return nil
}

func (m *MockRepository) ListMerges(limit int) ([]MergeRecord, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]MergeRecord, len(m.Merges))
	copy(out, m.Merges)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) Close() error { return nil }

// Seed loads ledger and bank fixtures, assigning ids when missing.
func (m *MockRepository) Seed(ledger []recon.LedgerTransaction, bank []recon.BankTransaction) {
	for _, tx := range ledger {
		if tx.ID == 0 {
			if m.nextLedgerID == 0 {
				m.nextLedgerID = 1
			}
			tx.ID = m.nextLedgerID
			m.nextLedgerID++
		} else if tx.ID >= m.nextLedgerID {
			m.nextLedgerID = tx.ID + 1
		}
		m.Ledger = append(m.Ledger, tx)
	}
	for _, tx := range bank {
		if tx.ID == 0 {
			if m.nextBankID == 0 {
				m.nextBankID = 1
			}
			tx.ID = m.nextBankID
			m.nextBankID++
		} else if tx.ID >= m.nextBankID {
			m.nextBankID = tx.ID + 1
		}
		m.Bank = append(m.Bank, tx)
	}
}
