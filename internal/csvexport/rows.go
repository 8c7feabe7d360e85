// Package csvexport reads and writes the pipeline's intermediate CSV
// artifacts: normalized, enriched, priced, pivot, and batch files. All
// artifacts are UTF-8 with LF line endings, a header row, ISO-8601 dates,
// and amounts with up to two decimal places and no thousands separators.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

const dateLayout = "2006-01-02"

var canonicalColumns = []string{
	"invoice_date", "order_id", "sku", "asin", "quantity",
	"taxable_value", "gst_rate", "buyer_state", "channel", "gstin",
	"month", "shipping_value", "returned_qty", "total_qty",
}

var enrichedExtra = []string{"fg", "item_resolved", "ledger_name", "ledger_resolved"}

var pricedExtra = []string{"cgst", "sgst", "igst", "total_tax", "total_amount", "invoice_no"}

var pivotColumns = []string{
	"gstin", "month", "gst_rate", "ledger_name", "fg", "buyer_state",
	"total_quantity", "total_taxable", "total_cgst", "total_sgst", "total_igst",
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatRate(d decimal.Decimal) string {
	return d.String()
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// WriteCanonical writes canonical rows with a header.
func WriteCanonical(w io.Writer, rows []domain.CanonicalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(canonicalColumns); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(canonicalRecord(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func canonicalRecord(r *domain.CanonicalRow) []string {
	return []string{
		r.InvoiceDate.Format(dateLayout),
		r.OrderID,
		r.SKU,
		r.ASIN,
		strconv.FormatInt(r.Quantity, 10),
		formatMoney(r.TaxableValue),
		formatRate(r.GSTRate),
		r.BuyerState,
		string(r.Channel),
		r.GSTIN,
		r.Month,
		formatMoney(r.ShippingValue),
		strconv.FormatInt(r.ReturnedQty, 10),
		strconv.FormatInt(r.TotalQty, 10),
	}
}

// ReadCanonical parses a canonical artifact back into rows. The round-trip
// is lossless for every canonical field.
func ReadCanonical(r io.Reader) ([]domain.CanonicalRow, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvexport.ReadCanonical: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvexport.ReadCanonical: %w", domain.ErrEmptyInput)
	}
	rows := make([]domain.CanonicalRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseCanonicalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadCanonical line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCanonicalRecord(rec []string) (domain.CanonicalRow, error) {
	var row domain.CanonicalRow
	if len(rec) != len(canonicalColumns) {
		return row, fmt.Errorf("expected %d fields, got %d", len(canonicalColumns), len(rec))
	}
	date, err := time.Parse(dateLayout, rec[0])
	if err != nil {
		return row, err
	}
	qty, err := strconv.ParseInt(rec[4], 10, 64)
	if err != nil {
		return row, err
	}
	taxable, err := decimal.NewFromString(rec[5])
	if err != nil {
		return row, err
	}
	rate, err := decimal.NewFromString(rec[6])
	if err != nil {
		return row, err
	}
	shipping, err := decimal.NewFromString(rec[11])
	if err != nil {
		return row, err
	}
	returned, err := strconv.ParseInt(rec[12], 10, 64)
	if err != nil {
		return row, err
	}
	total, err := strconv.ParseInt(rec[13], 10, 64)
	if err != nil {
		return row, err
	}
	row = domain.CanonicalRow{
		InvoiceDate:   date,
		OrderID:       rec[1],
		SKU:           rec[2],
		ASIN:          rec[3],
		Quantity:      qty,
		TaxableValue:  taxable,
		GSTRate:       rate,
		BuyerState:    rec[7],
		Channel:       domain.Channel(rec[8]),
		GSTIN:         rec[9],
		Month:         rec[10],
		ShippingValue: shipping,
		ReturnedQty:   returned,
		TotalQty:      total,
	}
	return row, nil
}

// WriteEnriched writes enriched rows with a header.
func WriteEnriched(w io.Writer, rows []domain.EnrichedRow) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, canonicalColumns...), enrichedExtra...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range rows {
		rec := append(canonicalRecord(&rows[i].CanonicalRow),
			rows[i].FG,
			formatBool(rows[i].ItemResolved),
			rows[i].LedgerName,
			formatBool(rows[i].LedgerResolved),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePriced writes priced rows with a header.
func WritePriced(w io.Writer, rows []domain.PricedRow) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, canonicalColumns...), enrichedExtra...)
	header = append(header, pricedExtra...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		rec := append(canonicalRecord(&r.CanonicalRow),
			r.FG,
			formatBool(r.ItemResolved),
			r.LedgerName,
			formatBool(r.LedgerResolved),
			formatMoney(r.CGST),
			formatMoney(r.SGST),
			formatMoney(r.IGST),
			formatMoney(r.TotalTax),
			formatMoney(r.TotalAmount),
			r.InvoiceNo,
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePivot writes pivot rows with a header. Batch files use the same
// layout, restricted to a single gst_rate.
func WritePivot(w io.Writer, rows []domain.PivotRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pivotColumns); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		rec := []string{
			r.GSTIN,
			r.Month,
			formatRate(r.GSTRate),
			r.LedgerName,
			r.FG,
			r.BuyerState,
			strconv.FormatInt(r.TotalQuantity, 10),
			formatMoney(r.TotalTaxable),
			formatMoney(r.TotalCGST),
			formatMoney(r.TotalSGST),
			formatMoney(r.TotalIGST),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPivot parses a pivot or batch artifact back into rows.
func ReadPivot(r io.Reader) ([]domain.PivotRow, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvexport.ReadPivot: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvexport.ReadPivot: %w", domain.ErrEmptyInput)
	}
	rows := make([]domain.PivotRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(pivotColumns) {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: expected %d fields, got %d",
				i+2, len(pivotColumns), len(rec))
		}
		rate, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		qty, err := strconv.ParseInt(rec[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		taxable, err := decimal.NewFromString(rec[7])
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		cgst, err := decimal.NewFromString(rec[8])
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		sgst, err := decimal.NewFromString(rec[9])
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		igst, err := decimal.NewFromString(rec[10])
		if err != nil {
			return nil, fmt.Errorf("csvexport.ReadPivot line %d: %w", i+2, err)
		}
		rows = append(rows, domain.PivotRow{
			GSTIN:         rec[0],
			Month:         rec[1],
			GSTRate:       rate,
			LedgerName:    rec[3],
			FG:            rec[4],
			BuyerState:    rec[5],
			TotalQuantity: qty,
			TotalTaxable:  taxable,
			TotalCGST:     cgst,
			TotalSGST:     sgst,
			TotalIGST:     igst,
		})
	}
	return rows, nil
}
