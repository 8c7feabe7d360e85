package normalize

import (
	"context"
	"fmt"
	"strings"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// amazonMTR normalizes the Amazon monthly transaction report. Shipment and
// Refund rows are the taxable events; refunds flip the sign on quantity and
// taxable value. Other transaction types are ignored.
type amazonMTR struct{}

var mtrRequired = []string{
	"transaction type", "order id", "sku", "invoice date", "quantity",
	"tax exclusive gross", "ship to state",
}

func (n *amazonMTR) ReportType() domain.ReportType { return domain.ReportTypeSalesMTR }

func (n *amazonMTR) Normalize(_ context.Context, in Input) (*Result, error) {
	t, err := loadTable(in.Path, mtrRequired)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range t.rows {
		line := t.firstLine + i

		txType := strings.ToLower(t.cell(row, "transaction type"))
		var sign int64
		switch txType {
		case "shipment":
			sign = 1
		case "refund":
			sign = -1
		default:
			continue // cancellations, freereplacements etc. are not taxable events
		}

		qty, err := parseQuantity(t.cell(row, "quantity"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		taxable, err := parseAmount(t.cell(row, "tax exclusive gross"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		shipping, err := parseAmount(t.cell(row, "shipping amount"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		date, err := parseDate(t.cell(row, "invoice date"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		rate, err := parseRate(t.cell(row, "gst rate"), in.DefaultGSTRate)
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		state := gst.CanonicalState(t.cell(row, "ship to state"))
		if state == "" {
			dropRow(res, line, fmt.Errorf("missing ship to state"))
			continue
		}

		s := decimalFromSign(sign)
		res.Rows = append(res.Rows, domain.CanonicalRow{
			InvoiceDate:   date,
			OrderID:       t.cell(row, "order id"),
			SKU:           t.cell(row, "sku"),
			ASIN:          t.cell(row, "asin"),
			Quantity:      sign * qty,
			TaxableValue:  taxable.Abs().Mul(s).Round(2),
			GSTRate:       rate,
			BuyerState:    state,
			Channel:       in.Channel,
			GSTIN:         in.GSTIN,
			Month:         in.Month,
			ShippingValue: shipping.Abs().Mul(s).Round(2),
		})
	}
	return finish(res, in.Path)
}
