package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

// Ledger CSV columns (header required): date, amount, merchant, and
// optionally description, category, currency.
var (
	merchantAliases = []string{"merchant", "merchant name", "vendor", "store"}
	categoryAliases = []string{"category"}
	currencyAliases = []string{"currency"}
)

// ParseLedgerCSV parses an exported ledger into ledger transactions, with the
// same per-row error reporting as the bank side. Used by the one-shot CLI;
// the API serves ledger rows from storage instead.
func ParseLedgerCSV(r io.Reader) ([]recon.LedgerTransaction, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("empty CSV")
	}

	header := records[0]
	date, amount := -1, -1
	merchant, description, category, currency := -1, -1, -1, -1
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case date < 0 && matchesAlias(name, dateAliases):
			date = i
		case amount < 0 && matchesAlias(name, amountAliases):
			amount = i
		case merchant < 0 && matchesAlias(name, merchantAliases):
			merchant = i
		case description < 0 && matchesAlias(name, descriptionAliases):
			description = i
		case category < 0 && matchesAlias(name, categoryAliases):
			category = i
		case currency < 0 && matchesAlias(name, currencyAliases):
			currency = i
		}
	}
	if date < 0 || amount < 0 {
		return nil, nil, fmt.Errorf("ledger CSV needs date and amount columns")
	}

	var txs []recon.LedgerTransaction
	var rowErrors []RowError
	nextID := int64(1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		rowNumber := i + 1

		tx, err := parseLedgerRow(record, date, amount, merchant, description, category, currency)
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				RowNumber:  rowNumber,
				RawContent: strings.Join(record, ","),
				Error:      err.Error(),
			})
			continue
		}
		tx.ID = nextID
		nextID++
		txs = append(txs, tx)
	}

	return txs, rowErrors, nil
}

func parseLedgerRow(record []string, date, amount, merchant, description, category, currency int) (recon.LedgerTransaction, error) {
	if err := checkWidth(record, date, amount); err != nil {
		return recon.LedgerTransaction{}, err
	}

	d, err := recon.ParseDate(record[date])
	if err != nil {
		return recon.LedgerTransaction{}, err
	}
	a, err := recon.ParseAmount(record[amount])
	if err != nil {
		return recon.LedgerTransaction{}, err
	}

	tx := recon.LedgerTransaction{
		TransactionDate: d,
		Amount:          a,
		Currency:        "USD",
	}
	if merchant >= 0 && merchant < len(record) {
		tx.MerchantName = strings.TrimSpace(record[merchant])
	}
	if description >= 0 && description < len(record) {
		tx.Description = strings.TrimSpace(record[description])
	}
	if category >= 0 && category < len(record) {
		tx.Category = strings.TrimSpace(record[category])
	}
	if currency >= 0 && currency < len(record) && strings.TrimSpace(record[currency]) != "" {
		tx.Currency = strings.ToUpper(strings.TrimSpace(record[currency]))
	}
	return tx, nil
}
