// Package pivot aggregates priced rows into per-group summaries using a
// channel-specific policy. Output order is deterministic.
package pivot

import (
	"sort"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

// Policy captures the per-channel pivot behavior.
type Policy struct {
	// DropZeroTaxable skips rows whose taxable value is exactly zero.
	DropZeroTaxable bool
	// ForceIGST folds any CGST/SGST remnants into IGST. Settlement
	// reports post interstate tax regardless of the buyer state.
	ForceIGST bool
	// KeepBuyerState adds buyer_state to the grouping key.
	KeepBuyerState bool
}

// PolicyFor returns the pivot policy for a channel.
func PolicyFor(channel domain.Channel) Policy {
	switch channel {
	case domain.ChannelAmazonMTR:
		return Policy{DropZeroTaxable: true}
	case domain.ChannelAmazonSTR:
		return Policy{ForceIGST: true}
	case domain.ChannelFlipkart:
		return Policy{KeepBuyerState: true}
	default:
		// pepperfry and future channels net positive and negative
		// rows within each group with no extra dimensions
		return Policy{}
	}
}

type key struct {
	rate   string
	ledger string
	fg     string
	state  string
}

// Aggregate groups priced rows by (gst_rate, ledger_name, fg) plus
// buyer_state when the policy keeps it, summing quantity, taxable value
// and the tax components. Rows for different groups never merge.
func Aggregate(rows []domain.PricedRow, p Policy) []domain.PivotRow {
	groups := make(map[key]*domain.PivotRow)
	order := make([]key, 0)

	for i := range rows {
		r := &rows[i]
		if p.DropZeroTaxable && r.TaxableValue.IsZero() {
			continue
		}

		k := key{rate: r.GSTRate.String(), ledger: r.LedgerName, fg: r.FG}
		if p.KeepBuyerState {
			k.state = r.BuyerState
		}

		g, ok := groups[k]
		if !ok {
			g = &domain.PivotRow{
				GSTIN:      r.GSTIN,
				Month:      r.Month,
				GSTRate:    r.GSTRate,
				LedgerName: r.LedgerName,
				FG:         r.FG,
				BuyerState: k.state,
			}
			groups[k] = g
			order = append(order, k)
		}

		g.TotalQuantity += r.Quantity
		g.TotalTaxable = g.TotalTaxable.Add(r.TaxableValue)
		g.TotalCGST = g.TotalCGST.Add(r.CGST)
		g.TotalSGST = g.TotalSGST.Add(r.SGST)
		g.TotalIGST = g.TotalIGST.Add(r.IGST)
	}

	out := make([]domain.PivotRow, 0, len(order))
	for _, k := range order {
		g := groups[k]
		if p.ForceIGST {
			g.TotalIGST = g.TotalIGST.Add(g.TotalCGST).Add(g.TotalSGST)
			g.TotalCGST = decimal.Zero
			g.TotalSGST = decimal.Zero
		}
		g.TotalTaxable = g.TotalTaxable.Round(2)
		g.TotalCGST = g.TotalCGST.Round(2)
		g.TotalSGST = g.TotalSGST.Round(2)
		g.TotalIGST = g.TotalIGST.Round(2)
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if c := a.GSTRate.Cmp(b.GSTRate); c != 0 {
			return c < 0
		}
		if a.LedgerName != b.LedgerName {
			return a.LedgerName < b.LedgerName
		}
		if a.FG != b.FG {
			return a.FG < b.FG
		}
		return a.BuyerState < b.BuyerState
	})
	return out
}
