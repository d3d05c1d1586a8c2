package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBankCSV_HeaderedStatement(t *testing.T) {
	input := `Date,Description,Amount,Balance
2024-03-01,COFFEE SHOP #102,-42.50,957.50
2024-03-02,GROCER MARKET,-100.00,857.50
`
	txs, rowErrors, err := ParseBankCSV(strings.NewReader(input), "batch-1")
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, txs, 2)

	assert.Equal(t, int64(1), txs[0].ID)
	assert.Equal(t, "COFFEE SHOP #102", txs[0].Description)
	assert.InDelta(t, -42.50, txs[0].Amount, 0.0001)
	assert.Equal(t, "batch-1", txs[0].UploadBatchID)
	assert.True(t, txs[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseBankCSV_MalformedRowReportedNotFatal(t *testing.T) {
	input := `Date,Description,Amount
2024-03-01,COFFEE SHOP,-42.50
2024-03-02,BROKEN ROW,not-a-number
2024-03-03,GROCER,-10.00
`
	txs, rowErrors, err := ParseBankCSV(strings.NewReader(input), "batch-1")
	require.NoError(t, err, "a bad row must not abort the upload")

	require.Len(t, txs, 2)
	require.Len(t, rowErrors, 1)
	assert.Equal(t, 3, rowErrors[0].RowNumber)
	assert.Contains(t, rowErrors[0].RawContent, "BROKEN ROW")
	assert.Contains(t, rowErrors[0].Error, "amount")
}

func TestParseBankCSV_TypeColumnDecidesSign(t *testing.T) {
	input := `Date,Description,Amount,Type
2024-03-01,COFFEE SHOP,42.50,DEBIT
2024-03-02,PAYCHECK,1000.00,CREDIT
`
	txs, rowErrors, err := ParseBankCSV(strings.NewReader(input), "b")
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, txs, 2)

	assert.InDelta(t, -42.50, txs[0].Amount, 0.0001, "debit becomes negative")
	assert.InDelta(t, 1000.00, txs[1].Amount, 0.0001)
}

func TestParseBankCSV_HeaderlessPositionalColumns(t *testing.T) {
	input := `2024-03-01,COFFEE SHOP,-42.50
2024-03-02,GROCER,-10.00
`
	txs, rowErrors, err := ParseBankCSV(strings.NewReader(input), "b")
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	assert.Len(t, txs, 2)
}

func TestParseBankCSV_AlternateHeaderNames(t *testing.T) {
	input := `Posted Date,Memo,Value
03/01/2024,"$1,234.56 STORE PURCHASE",-1234.56
`
	txs, _, err := ParseBankCSV(strings.NewReader(input), "b")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.InDelta(t, -1234.56, txs[0].Amount, 0.0001)
}

func TestParseBankCSV_ShortRowReported(t *testing.T) {
	input := `Date,Description,Amount
2024-03-01,ONLY TWO CELLS
`
	txs, rowErrors, err := ParseBankCSV(strings.NewReader(input), "b")
	require.NoError(t, err)
	assert.Empty(t, txs)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0].Error, "columns")
}

func TestParseBankCSV_EmptyInput(t *testing.T) {
	_, _, err := ParseBankCSV(strings.NewReader(""), "b")
	assert.Error(t, err)
}

func TestParseLedgerCSV(t *testing.T) {
	input := `Date,Amount,Merchant,Description,Currency
2024-03-01,-42.50,Coffee Shop,latte and pastry,USD
2024-03-05,bogus,Grocer,weekly shop,USD
`
	txs, rowErrors, err := ParseLedgerCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee Shop", txs[0].MerchantName)
	assert.Equal(t, "USD", txs[0].Currency)

	require.Len(t, rowErrors, 1)
	assert.Equal(t, 3, rowErrors[0].RowNumber)
}

func TestParseLedgerCSV_MissingRequiredColumns(t *testing.T) {
	input := `Merchant,Notes
Coffee Shop,no date or amount
`
	_, _, err := ParseLedgerCSV(strings.NewReader(input))
	assert.Error(t, err)
}
