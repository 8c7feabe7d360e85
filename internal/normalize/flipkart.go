package normalize

import (
	"context"
	"fmt"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// flipkartSales normalizes the Flipkart sales report. Invoice-date based;
// buyer state is retained as an extra pivot dimension downstream.
type flipkartSales struct{}

var flipkartRequired = []string{
	"invoice date", "order id", "sku", "quantity", "taxable value", "customer state",
}

func (n *flipkartSales) ReportType() domain.ReportType { return domain.ReportTypeFlipkartSales }

func (n *flipkartSales) Normalize(_ context.Context, in Input) (*Result, error) {
	t, err := loadTable(in.Path, flipkartRequired)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range t.rows {
		line := t.firstLine + i

		date, err := parseDate(t.cell(row, "invoice date"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		qty, err := parseQuantity(t.cell(row, "quantity"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		taxable, err := parseAmount(t.cell(row, "taxable value"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		shipping, err := parseAmount(t.cell(row, "shipping charges"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		rate, err := parseRate(t.cell(row, "gst rate"), in.DefaultGSTRate)
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		state := gst.CanonicalState(t.cell(row, "customer state"))
		if state == "" {
			dropRow(res, line, fmt.Errorf("missing customer state"))
			continue
		}

		res.Rows = append(res.Rows, domain.CanonicalRow{
			InvoiceDate:   date,
			OrderID:       t.cell(row, "order id"),
			SKU:           t.cell(row, "sku"),
			Quantity:      qty,
			TaxableValue:  taxable.Round(2),
			GSTRate:       rate,
			BuyerState:    state,
			Channel:       in.Channel,
			GSTIN:         in.GSTIN,
			Month:         in.Month,
			ShippingValue: shipping.Round(2),
		})
	}
	return finish(res, in.Path)
}
