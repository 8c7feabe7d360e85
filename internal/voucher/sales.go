// Package voucher writes X2Beta voucher workbooks from validated
// templates. The sales assembler emits one voucher per pivot row; the
// expense assembler emits one balanced multi-row voucher per statement.
package voucher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
	"tallyflow/internal/invoice"
	"tallyflow/internal/template"
)

const (
	amountFormat = "#,##0.00"
	dateFormat   = "dd-mm-yyyy"
)

// SalesInput is one per-rate batch to render against a sales template.
type SalesInput struct {
	Schema  *template.Schema
	Channel domain.Channel
	GSTIN   string
	Month   string
	Rows    []domain.PivotRow
	OutPath string
}

// SalesResult summarizes a written sales workbook.
type SalesResult struct {
	RecordCount  int
	TotalTaxable decimal.Decimal
	TotalTax     decimal.Decimal
}

// WriteSales renders one voucher row per pivot row onto the template
// and saves the workbook at OutPath.
func WriteSales(in SalesInput) (*SalesResult, error) {
	f, err := excelize.OpenFile(in.Schema.Path)
	if err != nil {
		return nil, fmt.Errorf("voucher.WriteSales: %w", err)
	}
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("voucher.WriteSales: %w", err)
	}

	res := &SalesResult{}
	date := firstOfMonth(in.Month)

	for i, p := range in.Rows {
		row := in.Schema.HeaderRow + 1 + i
		w := writer{f: f, schema: in.Schema, row: row, styles: st}

		state := p.BuyerState
		if state == "" {
			state = gst.StateFromGSTIN(in.GSTIN)
		}
		voucherNo := invoice.Format(in.Channel, state, in.Month, int64(i+1))

		rate := decimal.Zero
		if p.TotalQuantity > 0 {
			rate = gst.Round2(p.TotalTaxable.Div(decimal.NewFromInt(p.TotalQuantity)))
		}
		total := p.TotalTaxable.Add(p.TotalTax())

		w.date(template.ColDate, date)
		w.text(template.ColVoucherNo, voucherNo)
		w.text(template.ColVoucherType, "Sales")
		w.text(template.ColPartyLedger, p.LedgerName)
		w.text(template.ColPartyName, p.LedgerName)
		w.text(template.ColItemName, p.FG)
		w.quantity(template.ColQuantity, p.TotalQuantity)
		w.amount(template.ColRate, rate)
		w.amount(template.ColTaxableAmount, p.TotalTaxable)

		// Tax ledger labels appear only alongside a non-zero amount.
		if !p.TotalCGST.IsZero() {
			w.text(template.ColCGSTLedger, "Output CGST @ "+halfPct(p.GSTRate)+"%")
			w.amount(template.ColCGSTAmount, p.TotalCGST)
		}
		if !p.TotalSGST.IsZero() {
			w.text(template.ColSGSTLedger, "Output SGST @ "+halfPct(p.GSTRate)+"%")
			w.amount(template.ColSGSTAmount, p.TotalSGST)
		}
		if !p.TotalIGST.IsZero() {
			w.text(template.ColIGSTLedger, "Output IGST @ "+fullPct(p.GSTRate)+"%")
			w.amount(template.ColIGSTAmount, p.TotalIGST)
		}

		w.amount(template.ColTotalAmount, total)
		w.text(template.ColNarration, fmt.Sprintf("Sales - %s - %s", p.FG, in.Month))
		if w.err != nil {
			return nil, fmt.Errorf("voucher.WriteSales: %w", w.err)
		}

		res.RecordCount++
		res.TotalTaxable = res.TotalTaxable.Add(p.TotalTaxable)
		res.TotalTax = res.TotalTax.Add(p.TotalTax())
	}

	if err := f.SaveAs(in.OutPath); err != nil {
		return nil, fmt.Errorf("voucher.WriteSales: %w", err)
	}
	res.TotalTaxable = res.TotalTaxable.Round(2)
	res.TotalTax = res.TotalTax.Round(2)
	return res, nil
}

// firstOfMonth parses YYYY-MM into the first day of that month.
func firstOfMonth(month string) time.Time {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}
	}
	return t
}

// fullPct renders 0.18 as "18", 0.05 as "5".
func fullPct(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}

// halfPct renders 0.18 as "9", 0.05 as "2.5".
func halfPct(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(50)).String()
}

type styles struct {
	amount   int
	quantity int
	text     int
	date     int
}

func newStyles(f *excelize.File) (*styles, error) {
	fmtAmount := amountFormat
	amount, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &fmtAmount,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	quantity, err := f.NewStyle(&excelize.Style{
		NumFmt:    1,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	text, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return nil, err
	}
	fmtDate := dateFormat
	date, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &fmtDate,
		Alignment:    &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return nil, err
	}
	return &styles{amount: amount, quantity: quantity, text: text, date: date}, nil
}

// writer sets one voucher row cell by header name, carrying the first
// error instead of failing fast.
type writer struct {
	f      *excelize.File
	schema *template.Schema
	row    int
	styles *styles
	err    error
}

func (w *writer) set(name string, value any, style int) {
	if w.err != nil {
		return
	}
	cell, err := w.schema.CellName(w.row, name)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.schema.Sheet, cell, value); err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.schema.Sheet, cell, cell, style)
}

func (w *writer) text(name, value string) {
	w.set(name, value, w.styles.text)
}

func (w *writer) date(name string, value time.Time) {
	w.set(name, value, w.styles.date)
}

func (w *writer) quantity(name string, value int64) {
	w.set(name, value, w.styles.quantity)
}

func (w *writer) amount(name string, value decimal.Decimal) {
	v, _ := value.Round(2).Float64()
	w.set(name, v, w.styles.amount)
}
