// Package batch partitions pivot summaries into per-rate batches and
// reconciles the partition against its source before anything is exported.
package batch

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

// tolerance is the largest absolute amount drift allowed between the
// source pivot and the recombined batches.
var tolerance = decimal.NewFromFloat(0.01)

// Group is one per-rate batch of pivot rows.
type Group struct {
	GSTRate decimal.Decimal
	Rows    []domain.PivotRow
}

// Split partitions pivot rows by GST rate. Groups come out in ascending
// rate order and preserve the row order within each rate.
func Split(rows []domain.PivotRow) []Group {
	byRate := make(map[string]*Group)
	keys := make([]string, 0)

	for i := range rows {
		k := rows[i].GSTRate.String()
		g, ok := byRate[k]
		if !ok {
			g = &Group{GSTRate: rows[i].GSTRate}
			byRate[k] = g
			keys = append(keys, k)
		}
		g.Rows = append(g.Rows, rows[i])
	}

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byRate[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GSTRate.Cmp(out[j].GSTRate) < 0
	})
	return out
}

// Reconcile verifies the batches are a lossless partition of the source:
// the recombined rows must cover exactly the source's group keys, and
// each recombined amount must match its source within the tolerance.
func Reconcile(source []domain.PivotRow, groups []Group) error {
	combined := make([]domain.PivotRow, 0, len(source))
	for _, g := range groups {
		combined = append(combined, g.Rows...)
	}

	if len(combined) != len(source) {
		return fmt.Errorf("%w: %d source rows, %d batched rows",
			domain.ErrIntegrityCheckFailed, len(source), len(combined))
	}

	index := make(map[string]*domain.PivotRow, len(source))
	for i := range source {
		index[rowKey(&source[i])] = &source[i]
	}

	for i := range combined {
		b := &combined[i]
		s, ok := index[rowKey(b)]
		if !ok {
			return fmt.Errorf("%w: batched group %q missing from source",
				domain.ErrIntegrityCheckFailed, rowKey(b))
		}
		delete(index, rowKey(b))

		if b.TotalQuantity != s.TotalQuantity {
			return fmt.Errorf("%w: quantity drift for %q: %d vs %d",
				domain.ErrIntegrityCheckFailed, rowKey(b), s.TotalQuantity, b.TotalQuantity)
		}
		for _, c := range []struct {
			name string
			src  decimal.Decimal
			got  decimal.Decimal
		}{
			{"taxable", s.TotalTaxable, b.TotalTaxable},
			{"cgst", s.TotalCGST, b.TotalCGST},
			{"sgst", s.TotalSGST, b.TotalSGST},
			{"igst", s.TotalIGST, b.TotalIGST},
		} {
			if c.src.Sub(c.got).Abs().GreaterThan(tolerance) {
				return fmt.Errorf("%w: %s drift for %q: %s vs %s",
					domain.ErrIntegrityCheckFailed, c.name, rowKey(b), c.src, c.got)
			}
		}
	}

	for k := range index {
		return fmt.Errorf("%w: source group %q missing from batches",
			domain.ErrIntegrityCheckFailed, k)
	}
	return nil
}

func rowKey(r *domain.PivotRow) string {
	return r.GSTRate.String() + "|" + r.LedgerName + "|" + r.FG + "|" + r.BuyerState
}
