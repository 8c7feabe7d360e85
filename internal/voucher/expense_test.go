package voucher_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/voucher"
)

func feeInvoice(ledger, taxable, cgst, sgst, igst, total string) domain.SellerInvoice {
	return domain.SellerInvoice{
		LedgerName:   ledger,
		TaxableValue: d(taxable),
		CGST:         d(cgst),
		SGST:         d(sgst),
		IGST:         d(igst),
		TotalValue:   d(total),
	}
}

func TestWriteExpense_BalancedVoucher(t *testing.T) {
	schema := expenseSchema(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	invoices := []domain.SellerInvoice{
		feeInvoice("Commission Charges", "1000.00", "90.00", "90.00", "0", "1180.00"),
		feeInvoice("Commission Charges", "500.00", "45.00", "45.00", "0", "590.00"),
		feeInvoice("Shipping Charges", "200.00", "0", "0", "36.00", "236.00"),
	}

	res, err := voucher.WriteExpense(voucher.ExpenseInput{
		Schema:       schema,
		Month:        "2025-08",
		VoucherNo:    "EXP0625080001",
		VendorLedger: "Amazon Seller Services Payable",
		Invoices:     invoices,
		OutPath:      out,
	})
	require.NoError(t, err)

	// Five debit ledgers plus the vendor credit.
	assert.Equal(t, 6, res.RecordCount)
	assert.True(t, res.TotalTaxable.Equal(d("1700.00")))
	assert.True(t, res.TotalTax.Equal(d("306.00")))

	assert.Equal(t, "EXP0625080001", cellValue(t, out, schema.Sheet, "B2"))
	assert.Equal(t, "Journal", cellValue(t, out, schema.Sheet, "C2"))
	assert.Equal(t, "Commission Charges", cellValue(t, out, schema.Sheet, "D2"))
	assert.Equal(t, "1500", cellValue(t, out, schema.Sheet, "E2"))

	// The last row credits the vendor for the negated grand total.
	assert.Equal(t, "Amazon Seller Services Payable", cellValue(t, out, schema.Sheet, "D7"))
	assert.Equal(t, "-2006", cellValue(t, out, schema.Sheet, "E7"))
	assert.Equal(t, "Marketplace fees - 2025-08", cellValue(t, out, schema.Sheet, "F7"))
}

func TestWriteExpense_OffBalance(t *testing.T) {
	schema := expenseSchema(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	// TotalValue disagrees with the component sum by more than a paisa.
	invoices := []domain.SellerInvoice{
		feeInvoice("Commission Charges", "1000.00", "90.00", "90.00", "0", "1200.00"),
	}

	_, err := voucher.WriteExpense(voucher.ExpenseInput{
		Schema:       schema,
		Month:        "2025-08",
		VoucherNo:    "EXP0625080001",
		VendorLedger: "Amazon Seller Services Payable",
		Invoices:     invoices,
		OutPath:      out,
	})
	require.ErrorIs(t, err, domain.ErrIntegrityCheckFailed)
}
