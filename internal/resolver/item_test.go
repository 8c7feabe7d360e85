package resolver_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/resolver"
)

func items() []domain.ItemMaster {
	rate := decimal.RequireFromString("0.18")
	return []domain.ItemMaster{
		{SKU: "SOFA-3S-GREY", ASIN: "B0A1", ItemCode: "SOFA-3S-GREY", FG: "SOFA", GSTRate: rate, ApprovedBy: domain.SystemApprover},
		{SKU: "CHAIR-OAK", ASIN: "", ItemCode: "CHAIR-OAK", FG: "CHAIR", GSTRate: rate, ApprovedBy: domain.SystemApprover},
	}
}

func TestResolveItems_Hits(t *testing.T) {
	snap := resolver.NewItemSnapshot(items())
	rows := []domain.CanonicalRow{
		{SKU: "SOFA-3S-GREY", ASIN: "B0A1"},
		{SKU: "CHAIR-OAK"},
		{SKU: "OTHER-SKU", ASIN: "B0A1"}, // pair miss, asin fallback hits
	}

	res := resolver.ResolveItems(rows, snap)
	require.Len(t, res.Rows, 3)
	assert.Empty(t, res.Misses)
	assert.Equal(t, "SOFA", res.Rows[0].FG)
	assert.Equal(t, "CHAIR", res.Rows[1].FG)
	assert.Equal(t, "SOFA", res.Rows[2].FG)
	assert.True(t, res.Rows[2].ItemResolved)
}

func TestResolveItems_MissesDeduplicated(t *testing.T) {
	snap := resolver.NewItemSnapshot(nil)
	rows := []domain.CanonicalRow{
		{SKU: "TABLE-TEAK-4", ASIN: "B0T1"},
		{SKU: "TABLE-TEAK-4", ASIN: "B0T1"},
		{SKU: "BED-KING", ASIN: "B0B2"},
	}

	res := resolver.ResolveItems(rows, snap)
	require.Len(t, res.Misses, 2, "duplicate pairs collapse to one request")
	assert.Equal(t, "TABLE", res.Misses[0].SuggestedFG)
	assert.Equal(t, "BED", res.Misses[1].SuggestedFG)
	assert.False(t, res.Rows[0].ItemResolved)
}

func TestSuggestFG(t *testing.T) {
	assert.Equal(t, "SOFA", resolver.SuggestFG("SOFA-3S-GREY"))
	assert.Equal(t, "CHAIR", resolver.SuggestFG("CHAIR_OAK 4"))
	assert.Equal(t, "", resolver.SuggestFG(""))
}
