package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// Process classifies statement line items and computes their GST
// splits. A line without a rate takes the rule's default. An unknown
// vendor state forces the interstate split.
func Process(items []LineItem, engine *Engine, runID uuid.UUID, channel domain.Channel, gstin, sourceFile string) []domain.SellerInvoice {
	out := make([]domain.SellerInvoice, 0, len(items))
	for _, it := range items {
		rule := engine.Classify(it.Description)

		rate := it.GSTRate
		if rate.IsZero() {
			rate = rule.DefaultRate
		}

		vendorState := gst.StateFromGSTIN(it.VendorGSTIN)
		split := gst.Compute(it.TaxableValue, decimal.Zero, rate, gstin, vendorState, vendorState == "")

		inv := domain.SellerInvoice{
			ID:               uuid.New(),
			RunID:            runID,
			Channel:          channel,
			GSTIN:            gstin,
			VendorInvoiceNo:  it.VendorInvoiceNo,
			InvoiceDate:      it.InvoiceDate,
			ExpenseType:      rule.ExpenseType,
			TaxableValue:     it.TaxableValue.Round(2),
			GSTRate:          rate,
			LedgerName:       rule.LedgerName,
			SourceFile:       sourceFile,
			ProcessingStatus: "processed",
		}
		if rule.InputGST {
			inv.CGST = split.CGST
			inv.SGST = split.SGST
			inv.IGST = split.IGST
		}
		inv.TotalValue = inv.TaxableValue.Add(inv.CGST).Add(inv.SGST).Add(inv.IGST)

		if inv.InvoiceDate.IsZero() {
			inv.InvoiceDate = time.Now().UTC()
		}
		out = append(out, inv)
	}
	return out
}
