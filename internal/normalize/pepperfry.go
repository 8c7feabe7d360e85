package normalize

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// pepperfrySales normalizes the Pepperfry sales report plus its sibling
// returns file. Returns are emitted as extra rows carrying the original
// order_id with a negative quantity equal to the returned quantity and a
// proportional negative taxable value.
type pepperfrySales struct{}

var pepperfryRequired = []string{
	"invoice date", "order id", "sku", "quantity", "taxable value", "customer state",
}

var pepperfryReturnsRequired = []string{"order id", "sku", "returned qty"}

func (n *pepperfrySales) ReportType() domain.ReportType { return domain.ReportTypePepperfrySales }

func (n *pepperfrySales) Normalize(_ context.Context, in Input) (*Result, error) {
	t, err := loadTable(in.Path, pepperfryRequired)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	// sales rows indexed by (order_id, sku) for the returns join
	byOrder := make(map[string]int)

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

		r := domain.CanonicalRow{
			InvoiceDate:  date,
			OrderID:      t.cell(row, "order id"),
			SKU:          t.cell(row, "sku"),
			Quantity:     qty,
			TaxableValue: taxable.Round(2),
			GSTRate:      rate,
			BuyerState:   state,
			Channel:      in.Channel,
			GSTIN:        in.GSTIN,
			Month:        in.Month,
			TotalQty:     qty,
		}
		byOrder[r.OrderID+"|"+r.SKU] = len(res.Rows)
		res.Rows = append(res.Rows, r)
	}

	if in.ReturnsPath != "" {
		if err := n.appendReturns(in, res, byOrder); err != nil {
			return nil, err
		}
	}
	return finish(res, in.Path)
}

func (n *pepperfrySales) appendReturns(in Input, res *Result, byOrder map[string]int) error {
	rt, err := loadTable(in.ReturnsPath, pepperfryReturnsRequired)
	if err != nil {
		return err
	}

	for i, row := range rt.rows {
		line := rt.firstLine + i

		returned, err := parseQuantity(rt.cell(row, "returned qty"))
		if err != nil {
			dropRow(res, line, err)
			continue
		}
		if returned <= 0 {
			continue
		}

		key := rt.cell(row, "order id") + "|" + rt.cell(row, "sku")
		idx, ok := byOrder[key]
		if !ok {
			dropRow(res, line, fmt.Errorf("return for unknown order %s", rt.cell(row, "order id")))
			continue
		}
		sale := res.Rows[idx]

		// Proportional share of the sale's taxable value, negated.
		share := sale.TaxableValue
		if sale.Quantity > 0 {
			share = gst.Round2(sale.TaxableValue.
				Mul(decimal.NewFromInt(returned)).
				Div(decimal.NewFromInt(sale.Quantity)))
		}

		res.Rows = append(res.Rows, domain.CanonicalRow{
			InvoiceDate:  sale.InvoiceDate,
			OrderID:      sale.OrderID,
			SKU:          sale.SKU,
			Quantity:     -returned,
			TaxableValue: share.Neg(),
			GSTRate:      sale.GSTRate,
			BuyerState:   sale.BuyerState,
			Channel:      in.Channel,
			GSTIN:        in.GSTIN,
			Month:        in.Month,
			ReturnedQty:  returned,
			TotalQty:     sale.Quantity,
		})
	}
	return nil
}
