package voucher_test

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
	"tallyflow/internal/template"
	"tallyflow/internal/voucher"
)

const testGSTIN = "06ABCDE1234F1Z5"

var salesHeaders = []string{
	template.ColDate, template.ColVoucherNo, template.ColVoucherType,
	template.ColPartyLedger, template.ColPartyName, template.ColItemName,
	template.ColQuantity, template.ColRate, template.ColTaxableAmount,
	template.ColCGSTLedger, template.ColCGSTAmount,
	template.ColSGSTLedger, template.ColSGSTAmount,
	template.ColIGSTLedger, template.ColIGSTAmount,
	template.ColTotalAmount, template.ColNarration,
}

var expenseHeaders = []string{
	template.ColDate, template.ColVoucherNo, template.ColVoucherType,
	template.ColLedgerName, template.ColTotalAmount, template.ColNarration,
}

func writeTemplate(t *testing.T, path string, headers []string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	require.NoError(t, f.SaveAs(path))
}

func salesSchema(t *testing.T) *template.Schema {
	t.Helper()
	dir := t.TempDir()
	writeTemplate(t, filepath.Join(dir, testGSTIN+"_sales.xlsx"), salesHeaders)
	s, err := template.NewRegistry(dir).Sales(testGSTIN)
	require.NoError(t, err)
	return s
}

func expenseSchema(t *testing.T) *template.Schema {
	t.Helper()
	dir := t.TempDir()
	writeTemplate(t, filepath.Join(dir, testGSTIN+"_expense.xlsx"), expenseHeaders)
	s, err := template.NewRegistry(dir).Expense(testGSTIN)
	require.NoError(t, err)
	return s
}

func cellValue(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

// formattedValue reads a cell with its number format applied.
func formattedValue(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWriteSales(t *testing.T) {
	schema := salesSchema(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	rows := []domain.PivotRow{
		{
			GSTIN: testGSTIN, Month: "2025-08", GSTRate: d("0.18"),
			LedgerName: "Amazon Sales HR", FG: "SOFA", BuyerState: "HARYANA",
			TotalQuantity: 2, TotalTaxable: d("2000.00"),
			TotalCGST: d("180.00"), TotalSGST: d("180.00"),
		},
		{
			GSTIN: testGSTIN, Month: "2025-08", GSTRate: d("0.18"),
			LedgerName: "Amazon Sales DL", FG: "SOFA", BuyerState: "DELHI",
			TotalQuantity: 1, TotalTaxable: d("1000.00"), TotalIGST: d("180.00"),
		},
	}

	res, err := voucher.WriteSales(voucher.SalesInput{
		Schema:  schema,
		Channel: domain.ChannelAmazonMTR,
		GSTIN:   testGSTIN,
		Month:   "2025-08",
		Rows:    rows,
		OutPath: out,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.RecordCount)
	assert.True(t, res.TotalTaxable.Equal(d("3000.00")))
	assert.True(t, res.TotalTax.Equal(d("540.00")))

	// First voucher row: intrastate split. The date cell holds a real
	// date value and renders through its dd-mm-yyyy number format.
	assert.Equal(t, "01-08-2025", formattedValue(t, out, schema.Sheet, "A2"))
	assert.NotEqual(t, "01-08-2025", cellValue(t, out, schema.Sheet, "A2"),
		"raw cell is a date serial, not text")
	assert.Equal(t, "AMZ-HR-08-0001", cellValue(t, out, schema.Sheet, "B2"))
	assert.Equal(t, "Sales", cellValue(t, out, schema.Sheet, "C2"))
	assert.Equal(t, "Output CGST @ 9%", cellValue(t, out, schema.Sheet, "J2"))
	assert.Equal(t, "180", cellValue(t, out, schema.Sheet, "K2"))
	assert.Equal(t, "", cellValue(t, out, schema.Sheet, "N2"), "IGST ledger stays blank")
	assert.Equal(t, "Sales - SOFA - 2025-08", cellValue(t, out, schema.Sheet, "Q2"))

	// Second voucher row: interstate.
	assert.Equal(t, "AMZ-DL-08-0002", cellValue(t, out, schema.Sheet, "B3"))
	assert.Equal(t, "", cellValue(t, out, schema.Sheet, "J3"))
	assert.Equal(t, "Output IGST @ 18%", cellValue(t, out, schema.Sheet, "N3"))
}

func TestWriteSales_BlankStateFallsBackToSeller(t *testing.T) {
	schema := salesSchema(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	rows := []domain.PivotRow{{
		GSTIN: testGSTIN, Month: "2025-08", GSTRate: d("0.18"),
		LedgerName: "Pepperfry Sales", FG: "CHAIR",
		TotalQuantity: 1, TotalTaxable: d("1000.00"),
		TotalCGST: d("90.00"), TotalSGST: d("90.00"),
	}}

	_, err := voucher.WriteSales(voucher.SalesInput{
		Schema:  schema,
		Channel: domain.ChannelPepperfry,
		GSTIN:   testGSTIN,
		Month:   "2025-08",
		Rows:    rows,
		OutPath: out,
	})
	require.NoError(t, err)

	assert.Equal(t, "PEPP-HR-08-0001", cellValue(t, out, schema.Sheet, "B2"))
}
