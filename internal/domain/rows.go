package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllowedGSTRates is the closed set of valid GST rates, as decimals.
var AllowedGSTRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromFloat(0.05),
	decimal.NewFromFloat(0.12),
	decimal.NewFromFloat(0.18),
	decimal.NewFromFloat(0.28),
}

// ValidGSTRate reports whether rate is one of the allowed GST rates.
func ValidGSTRate(rate decimal.Decimal) bool {
	for _, r := range AllowedGSTRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// CanonicalRow is the normalized transaction row every channel reader emits.
// Refund/return rows carry negative Quantity and TaxableValue.
type CanonicalRow struct {
	InvoiceDate   time.Time       `json:"invoice_date"`
	OrderID       string          `json:"order_id"`
	SKU           string          `json:"sku"`
	ASIN          string          `json:"asin"`
	Quantity      int64           `json:"quantity"`
	TaxableValue  decimal.Decimal `json:"taxable_value"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	BuyerState    string          `json:"buyer_state"`
	Channel       Channel         `json:"channel"`
	GSTIN         string          `json:"gstin"`
	Month         string          `json:"month"`
	ShippingValue decimal.Decimal `json:"shipping_value"`
	ReturnedQty   int64           `json:"returned_qty"`
	TotalQty      int64           `json:"total_qty"`
}

// EnrichedRow is a canonical row annotated with master-data lookups.
type EnrichedRow struct {
	CanonicalRow
	FG             string `json:"fg"`
	ItemResolved   bool   `json:"item_resolved"`
	LedgerName     string `json:"ledger_name"`
	LedgerResolved bool   `json:"ledger_resolved"`
}

// PricedRow is an enriched row with its tax split and invoice number.
type PricedRow struct {
	EnrichedRow
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	InvoiceNo   string          `json:"invoice_no"`
}

// PivotRow is one aggregated group of priced rows.
// BuyerState is empty unless the channel retains it as a pivot dimension.
type PivotRow struct {
	GSTIN         string          `json:"gstin"`
	Month         string          `json:"month"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	LedgerName    string          `json:"ledger_name"`
	FG            string          `json:"fg"`
	BuyerState    string          `json:"buyer_state"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalTaxable  decimal.Decimal `json:"total_taxable"`
	TotalCGST     decimal.Decimal `json:"total_cgst"`
	TotalSGST     decimal.Decimal `json:"total_sgst"`
	TotalIGST     decimal.Decimal `json:"total_igst"`
}

// TotalTax returns the summed tax measures of the pivot row.
func (p *PivotRow) TotalTax() decimal.Decimal {
	return p.TotalCGST.Add(p.TotalSGST).Add(p.TotalIGST)
}

// RowError is a recovered single-row failure carried instead of an exception.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
