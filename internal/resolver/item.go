// Package resolver enriches canonical rows with master data. Both
// resolvers work against an immutable snapshot taken at stage start, so
// approvals committed mid-stage only affect later runs.
package resolver

import (
	"strings"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

// suggestedItemRate is the default GST rate proposed on an item miss.
var suggestedItemRate = decimal.NewFromFloat(0.18)

// ItemSnapshot is a point-in-time copy of the item master.
type ItemSnapshot struct {
	byPair map[string]*domain.ItemMaster
	bySKU  map[string]*domain.ItemMaster
	byASIN map[string]*domain.ItemMaster
}

// NewItemSnapshot indexes the item master rows for lookup.
func NewItemSnapshot(items []domain.ItemMaster) *ItemSnapshot {
	s := &ItemSnapshot{
		byPair: make(map[string]*domain.ItemMaster, len(items)),
		bySKU:  make(map[string]*domain.ItemMaster, len(items)),
		byASIN: make(map[string]*domain.ItemMaster, len(items)),
	}
	for i := range items {
		it := &items[i]
		s.byPair[it.SKU+"|"+it.ASIN] = it
		if it.SKU != "" {
			s.bySKU[it.SKU] = it
		}
		if it.ASIN != "" {
			s.byASIN[it.ASIN] = it
		}
	}
	return s
}

// Lookup resolves a (sku, asin) pair: exact pair, then sku, then asin.
func (s *ItemSnapshot) Lookup(sku, asin string) (*domain.ItemMaster, bool) {
	if it, ok := s.byPair[sku+"|"+asin]; ok {
		return it, true
	}
	if it, ok := s.bySKU[sku]; ok {
		return it, true
	}
	if asin != "" {
		if it, ok := s.byASIN[asin]; ok {
			return it, true
		}
	}
	return nil, false
}

// ItemResult is the outcome of item resolution over a dataset.
type ItemResult struct {
	Rows []domain.EnrichedRow
	// Misses holds one deduplicated approval payload per unresolved
	// (sku, asin) pair, in first-seen order.
	Misses []domain.ItemApprovalPayload
}

// ResolveItems annotates rows with the finished good. Unresolved pairs
// produce one approval payload each; the suggested FG is the first word of
// the SKU.
func ResolveItems(rows []domain.CanonicalRow, snap *ItemSnapshot) *ItemResult {
	res := &ItemResult{Rows: make([]domain.EnrichedRow, 0, len(rows))}
	seen := make(map[string]bool)

	for i := range rows {
		er := domain.EnrichedRow{CanonicalRow: rows[i]}
		if it, ok := snap.Lookup(rows[i].SKU, rows[i].ASIN); ok {
			er.FG = it.FG
			er.ItemResolved = true
		} else {
			key := rows[i].SKU + "|" + rows[i].ASIN
			if !seen[key] {
				seen[key] = true
				res.Misses = append(res.Misses, domain.ItemApprovalPayload{
					SKU:              rows[i].SKU,
					ASIN:             rows[i].ASIN,
					SuggestedFG:      SuggestFG(rows[i].SKU),
					SuggestedGSTRate: suggestedItemRate,
				})
			}
		}
		res.Rows = append(res.Rows, er)
	}
	return res
}

// SuggestFG derives the default finished-good name from a SKU.
func SuggestFG(sku string) string {
	return firstWord(sku)
}

func firstWord(sku string) string {
	fields := strings.FieldsFunc(sku, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	if len(fields) == 0 {
		return sku
	}
	return fields[0]
}
