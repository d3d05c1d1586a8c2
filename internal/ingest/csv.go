// Package ingest parses uploaded CSV statements into typed transactions.
//
// Bank exports disagree on column names, date formats, and sign conventions,
// so parsing is deliberately forgiving: headers are matched against aliases,
// amounts tolerate currency symbols and parenthesized negatives, and a
// malformed row is reported back with its row number instead of aborting the
// whole upload.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

// RowError describes one rejected CSV row. Reported back to the uploader
// row-by-row; the rest of the batch is unaffected.
type RowError struct {
	RowNumber  int    `json:"row_number"`
	RawContent string `json:"raw_content"`
	Error      string `json:"error"`
}

// Column aliases, lower-cased. The first header cell matching an alias set
// claims that column.
var (
	dateAliases        = []string{"date", "transaction date", "trans date", "posted date", "posting date"}
	descriptionAliases = []string{"description", "memo", "details", "payee", "narrative", "merchant"}
	amountAliases      = []string{"amount", "value", "transaction amount"}
	typeAliases        = []string{"type", "transaction type", "dr/cr"}
	balanceAliases     = []string{"balance", "running balance"}
)

type columnMap struct {
	date        int
	description int
	amount      int
	txType      int // optional, -1 when absent
	balance     int // recognized but ignored
}

// ParseBankCSV parses a bank statement export into bank transactions.
// Transactions receive sequential ids in row order; persistent ids are
// assigned by storage on insert. Malformed rows are returned as RowErrors
// and excluded from the batch.
func ParseBankCSV(r io.Reader, batchID string) ([]recon.BankTransaction, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-row
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV")
	}

	cols, hasHeader := detectColumns(records[0])
	start := 0
	if hasHeader {
		start = 1
	}

	var txs []recon.BankTransaction
	var rowErrors []RowError
	nextID := int64(1)

	for i := start; i < len(records); i++ {
		record := records[i]
		rowNumber := i + 1

		tx, err := parseBankRow(record, cols)
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				RowNumber:  rowNumber,
				RawContent: strings.Join(record, ","),
				Error:      err.Error(),
			})
			continue
		}
		tx.ID = nextID
		tx.UploadBatchID = batchID
		nextID++
		txs = append(txs, tx)
	}

	return txs, rowErrors, nil
}

func parseBankRow(record []string, cols columnMap) (recon.BankTransaction, error) {
	if err := checkWidth(record, cols.date, cols.description, cols.amount); err != nil {
		return recon.BankTransaction{}, err
	}

	date, err := recon.ParseDate(record[cols.date])
	if err != nil {
		return recon.BankTransaction{}, err
	}
	amount, err := recon.ParseAmount(record[cols.amount])
	if err != nil {
		return recon.BankTransaction{}, err
	}

	// Debit-negative sign convention. Exports with a type column often list
	// unsigned amounts; the type decides the sign.
	if cols.txType >= 0 && cols.txType < len(record) {
		amount = applyTypeSign(amount, record[cols.txType])
	}

	description := strings.TrimSpace(record[cols.description])
	if description == "" {
		return recon.BankTransaction{}, fmt.Errorf("empty description")
	}

	return recon.BankTransaction{
		Date:        date,
		Amount:      amount,
		Description: description,
	}, nil
}

// detectColumns inspects the first row. When it looks like a header the
// aliases decide the mapping; otherwise positional columns are assumed:
// date, description, amount, optional balance.
func detectColumns(first []string) (columnMap, bool) {
	cols := columnMap{date: -1, description: -1, amount: -1, txType: -1, balance: -1}

	for i, cell := range first {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case cols.date < 0 && matchesAlias(name, dateAliases):
			cols.date = i
		case cols.description < 0 && matchesAlias(name, descriptionAliases):
			cols.description = i
		case cols.amount < 0 && matchesAlias(name, amountAliases):
			cols.amount = i
		case cols.txType < 0 && matchesAlias(name, typeAliases):
			cols.txType = i
		case cols.balance < 0 && matchesAlias(name, balanceAliases):
			cols.balance = i
		}
	}

	if cols.date >= 0 && cols.description >= 0 && cols.amount >= 0 {
		return cols, true
	}
	return columnMap{date: 0, description: 1, amount: 2, txType: -1, balance: -1}, false
}

func matchesAlias(name string, aliases []string) bool {
	for _, alias := range aliases {
		if name == alias {
			return true
		}
	}
	return false
}

func applyTypeSign(amount float64, typeCell string) float64 {
	t := strings.ToLower(strings.TrimSpace(typeCell))
	switch {
	case strings.Contains(t, "debit"), t == "dr", strings.Contains(t, "withdrawal"), strings.Contains(t, "purchase"):
		if amount > 0 {
			return -amount
		}
	case strings.Contains(t, "credit"), t == "cr", strings.Contains(t, "deposit"), strings.Contains(t, "refund"):
		if amount < 0 {
			return -amount
		}
	}
	return amount
}

func checkWidth(record []string, idxs ...int) error {
	for _, idx := range idxs {
		if idx >= len(record) {
			return fmt.Errorf("row has %d columns, need at least %d", len(record), idx+1)
		}
	}
	return nil
}
