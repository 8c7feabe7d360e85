package template_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
	"tallyflow/internal/template"
)

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

// writeTemplate builds an xlsx with the headers on the given 1-based row.
func writeTemplate(t *testing.T, path string, headers []string, headerRow int) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRegistry_Sales(t *testing.T) {
	dir := t.TempDir()
	gstin := "06ABCDE1234F1Z5"
	writeTemplate(t, filepath.Join(dir, gstin+"_sales.xlsx"), salesHeaders, 1)

	s, err := template.NewRegistry(dir).Sales(gstin)
	require.NoError(t, err)

	assert.Equal(t, template.KindSales, s.Kind)
	assert.Equal(t, 1, s.HeaderRow)
	assert.Equal(t, 2, s.Col(template.ColVoucherNo))
	assert.Equal(t, salesHeaders, s.Order)

	cell, err := s.CellName(2, template.ColDate)
	require.NoError(t, err)
	assert.Equal(t, "A2", cell)
}

func TestRegistry_HeaderBelowBanner(t *testing.T) {
	dir := t.TempDir()
	gstin := "06ABCDE1234F1Z5"
	path := filepath.Join(dir, gstin+"_expense.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "X2Beta Journal Import"))
	for i, h := range expenseHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s, err := template.NewRegistry(dir).Expense(gstin)
	require.NoError(t, err)
	assert.Equal(t, 3, s.HeaderRow)
}

func TestRegistry_ExtraColumnsPreserved(t *testing.T) {
	dir := t.TempDir()
	gstin := "06ABCDE1234F1Z5"
	headers := append(append([]string{}, salesHeaders...), "Cost Centre")
	writeTemplate(t, filepath.Join(dir, gstin+"_sales.xlsx"), headers, 1)

	s, err := template.NewRegistry(dir).Sales(gstin)
	require.NoError(t, err)
	assert.Contains(t, s.Order, "Cost Centre")
	assert.Equal(t, len(headers), s.Col("Cost Centre"))
}

func TestRegistry_MissingHeaders(t *testing.T) {
	dir := t.TempDir()
	gstin := "06ABCDE1234F1Z5"
	// Drop the narration column.
	writeTemplate(t, filepath.Join(dir, gstin+"_sales.xlsx"), salesHeaders[:len(salesHeaders)-1], 1)

	_, err := template.NewRegistry(dir).Sales(gstin)
	require.ErrorIs(t, err, domain.ErrTemplateInvalid)
	assert.Contains(t, err.Error(), template.ColNarration)
}

func TestRegistry_MissingFile(t *testing.T) {
	_, err := template.NewRegistry(t.TempDir()).Sales("06ABCDE1234F1Z5")
	require.ErrorIs(t, err, domain.ErrTemplateInvalid)
}

func TestRegistry_NoHeaderRow(t *testing.T) {
	dir := t.TempDir()
	gstin := "06ABCDE1234F1Z5"
	writeTemplate(t, filepath.Join(dir, gstin+"_sales.xlsx"), salesHeaders, 12)

	_, err := template.NewRegistry(dir).Sales(gstin)
	require.ErrorIs(t, err, domain.ErrTemplateInvalid)
}
