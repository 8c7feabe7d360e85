package expense_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/expense"
	"tallyflow/mocks"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const statementCSV = `Invoice Number,Invoice Date,Description,Taxable Value,Gst Rate,Vendor GSTIN
AMZ-INV-9001,2025-08-31,Referral Fee,"1,000.00",18%,29AABCA1234B1Z5
AMZ-INV-9001,2025-08-31,Weight Handling Fee,250.00,18,29AABCA1234B1Z5
AMZ-INV-9001,2025-08-31,,100.00,18,29AABCA1234B1Z5
`

func TestParseStatement_CSV(t *testing.T) {
	path := writeFile(t, "fees.csv", statementCSV)

	items, err := expense.ParseStatement(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, items, 2, "blank descriptions are skipped")

	first := items[0]
	assert.Equal(t, "AMZ-INV-9001", first.VendorInvoiceNo)
	assert.Equal(t, "Referral Fee", first.Description)
	assert.True(t, first.TaxableValue.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, first.GSTRate.Equal(decimal.RequireFromString("0.18")))
	assert.Equal(t, "29AABCA1234B1Z5", first.VendorGSTIN)
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), first.InvoiceDate)
}

func TestParseStatement_SchemaMismatch(t *testing.T) {
	path := writeFile(t, "fees.csv", "Description,Amount\nReferral Fee,100.00\n")

	_, err := expense.ParseStatement(context.Background(), path, nil)
	require.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestParseStatement_Empty(t *testing.T) {
	path := writeFile(t, "fees.csv",
		"Invoice Number,Invoice Date,Description,Taxable Value\n")

	_, err := expense.ParseStatement(context.Background(), path, nil)
	require.ErrorIs(t, err, domain.ErrEmptyInput)
}

const pdfText = `Tax Invoice
Invoice Number: AMZ-FEE-2025-08
Invoice Date: 2025-08-31
GSTIN: 29AABCA1234B1Z5
Referral Fee 1,000.00 18%
Weight Handling Fee 250.00 18%
Closing Fee 45.50 18%
Total 1,295.50
`

func TestParseStatement_PDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	extractor := new(mocks.MockPDFExtractor)
	extractor.On("ExtractText", mock.Anything, path).Return(pdfText, nil)

	items, err := expense.ParseStatement(context.Background(), path, extractor)
	require.NoError(t, err)
	require.Len(t, items, 3, "the total line carries no rate and is skipped")

	for _, it := range items {
		assert.Equal(t, "AMZ-FEE-2025-08", it.VendorInvoiceNo)
		assert.Equal(t, "29AABCA1234B1Z5", it.VendorGSTIN)
		assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), it.InvoiceDate)
	}
	assert.Equal(t, "Closing Fee", items[2].Description)
	assert.True(t, items[2].TaxableValue.Equal(decimal.RequireFromString("45.50")))
	extractor.AssertExpectations(t)
}

func TestParseStatement_PDFWithoutExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	_, err := expense.ParseStatement(context.Background(), path, nil)
	require.Error(t, err)
}
