package normalize

import (
	"context"
	"fmt"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// amazonSTR normalizes the Amazon settlement report. Rows are posting-date
// based. Buyer state is captured even though the settlement channel later
// forces IGST-only; the pivot stage depends on it for ledger resolution.
type amazonSTR struct{}

var strRequired = []string{
	"posting date", "order id", "sku", "quantity", "amount", "ship to state",
}

func (n *amazonSTR) ReportType() domain.ReportType { return domain.ReportTypeSettlementSTR }

func (n *amazonSTR) Normalize(_ context.Context, in Input) (*Result, error) {
	t, err := loadTable(in.Path, strRequired)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range t.rows {
		line := t.firstLine + i

		date, err := parseDate(t.cell(row, "posting date"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		qty, err := parseQuantity(t.cell(row, "quantity"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		taxable, err := parseAmount(t.cell(row, "amount"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		rate, err := parseRate(t.cell(row, "gst rate"), in.DefaultGSTRate)
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		returned, err := parseQuantity(t.cell(row, "quantity returned"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		state := gst.CanonicalState(t.cell(row, "ship to state"))
		if state == "" {
			dropRow(res, line, fmt.Errorf("missing ship to state"))
			continue
		}

		totalQty := qty
		res.Rows = append(res.Rows, domain.CanonicalRow{
			InvoiceDate:  date,
			OrderID:      t.cell(row, "order id"),
			SKU:          t.cell(row, "sku"),
			ASIN:         t.cell(row, "asin"),
			Quantity:     qty,
			TaxableValue: taxable.Round(2),
			GSTRate:      rate,
			BuyerState:   state,
			Channel:      in.Channel,
			GSTIN:        in.GSTIN,
			Month:        in.Month,
			ReturnedQty:  returned,
			TotalQty:     totalQty,
		})
	}
	return finish(res, in.Path)
}
