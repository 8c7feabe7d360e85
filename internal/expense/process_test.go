package expense_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/expense"
)

func TestProcess_SplitsAndClassifies(t *testing.T) {
	runID := uuid.New()
	date := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	items := []expense.LineItem{
		{
			VendorInvoiceNo: "AMZ-INV-9001",
			InvoiceDate:     date,
			Description:     "Referral Fee",
			TaxableValue:    decimal.RequireFromString("1000.00"),
			GSTRate:         decimal.RequireFromString("0.18"),
			VendorGSTIN:     "06AABCA1234B1Z5", // same state as the seller
		},
		{
			VendorInvoiceNo: "AMZ-INV-9001",
			InvoiceDate:     date,
			Description:     "Weight Handling Fee",
			TaxableValue:    decimal.RequireFromString("250.00"),
			VendorGSTIN:     "29AABCA1234B1Z5", // interstate
		},
	}

	out := expense.Process(items, expense.DefaultEngine(), runID, domain.ChannelAmazonMTR, "06ABCDE1234F1Z5", "fees.csv")
	require.Len(t, out, 2)

	ref := out[0]
	assert.Equal(t, runID, ref.RunID)
	assert.Equal(t, "Commission Fee", ref.ExpenseType)
	assert.Equal(t, "Marketplace Commission", ref.LedgerName)
	assert.True(t, ref.CGST.Equal(decimal.RequireFromString("90.00")))
	assert.True(t, ref.SGST.Equal(decimal.RequireFromString("90.00")))
	assert.True(t, ref.IGST.IsZero())
	assert.True(t, ref.TotalValue.Equal(decimal.RequireFromString("1180.00")))
	assert.Equal(t, "processed", ref.ProcessingStatus)

	// Missing rate falls back to the rule default; interstate vendor posts IGST.
	wh := out[1]
	assert.True(t, wh.GSTRate.Equal(decimal.RequireFromString("0.18")))
	assert.True(t, wh.IGST.Equal(decimal.RequireFromString("45.00")))
	assert.True(t, wh.CGST.IsZero())
}

func TestProcess_UnknownVendorStateForcesIGST(t *testing.T) {
	items := []expense.LineItem{{
		Description:  "Commission",
		TaxableValue: decimal.RequireFromString("100.00"),
		GSTRate:      decimal.RequireFromString("0.18"),
	}}

	out := expense.Process(items, expense.DefaultEngine(), uuid.New(), domain.ChannelFlipkart, "06ABCDE1234F1Z5", "fees.csv")
	require.Len(t, out, 1)
	assert.True(t, out[0].IGST.Equal(decimal.RequireFromString("18.00")))
	assert.False(t, out[0].InvoiceDate.IsZero(), "zero dates default to now")
}
