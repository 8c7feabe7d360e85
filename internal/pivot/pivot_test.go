package pivot_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/pivot"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func priced(rate, ledger, fg, state string, qty int64, taxable, cgst, sgst, igst string) domain.PricedRow {
	return domain.PricedRow{
		EnrichedRow: domain.EnrichedRow{
			CanonicalRow: domain.CanonicalRow{
				GSTIN:        "06ABCDE1234F1Z5",
				Month:        "2025-08",
				GSTRate:      d(rate),
				BuyerState:   state,
				Quantity:     qty,
				TaxableValue: d(taxable),
			},
			FG:         fg,
			LedgerName: ledger,
		},
		CGST: d(cgst),
		SGST: d(sgst),
		IGST: d(igst),
	}
}

func TestAggregate_GroupsAndSums(t *testing.T) {
	rows := []domain.PricedRow{
		priced("0.18", "Amazon Sales HR", "SOFA", "HARYANA", 2, "2000.00", "180.00", "180.00", "0"),
		priced("0.18", "Amazon Sales HR", "SOFA", "HARYANA", 1, "1000.00", "90.00", "90.00", "0"),
		priced("0.05", "Amazon Sales HR", "BOOK", "HARYANA", 1, "200.00", "5.00", "5.00", "0"),
	}

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelPepperfry))
	require.Len(t, out, 2)

	// Rate ascending: the 5% group sorts first.
	assert.Equal(t, "BOOK", out[0].FG)

	sofa := out[1]
	assert.Equal(t, int64(3), sofa.TotalQuantity)
	assert.True(t, sofa.TotalTaxable.Equal(d("3000.00")))
	assert.True(t, sofa.TotalCGST.Equal(d("270.00")))
	assert.True(t, sofa.TotalSGST.Equal(d("270.00")))
	assert.Equal(t, "", sofa.BuyerState, "default policy drops the state dimension")
}

func TestAggregate_ShippingStaysOutOfTaxable(t *testing.T) {
	// Shipping enters the GST base upstream, so the tax components carry
	// its share while total_taxable sums taxable_value alone.
	rows := []domain.PricedRow{
		priced("0.18", "Amazon Sales HR", "SOFA", "HARYANA", 1, "1000.00", "95.31", "95.31", "0"),
		priced("0.18", "Amazon Sales HR", "SOFA", "HARYANA", 1, "2000.00", "185.31", "185.31", "0"),
	}
	rows[0].ShippingValue = d("59.00")
	rows[1].ShippingValue = d("59.00")

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelAmazonMTR))
	require.Len(t, out, 1)

	sourceTaxable := rows[0].TaxableValue.Add(rows[1].TaxableValue)
	assert.True(t, out[0].TotalTaxable.Equal(sourceTaxable),
		"pivot taxable matches the priced rows it came from")
	assert.True(t, out[0].TotalTaxable.Equal(d("3000.00")))
	assert.True(t, out[0].TotalCGST.Equal(d("280.62")))
}

func TestAggregate_DropZeroTaxable(t *testing.T) {
	rows := []domain.PricedRow{
		priced("0.18", "L", "FG", "HARYANA", 1, "0.00", "0", "0", "0"),
		priced("0.18", "L", "FG", "HARYANA", 1, "100.00", "9.00", "9.00", "0"),
	}

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelAmazonMTR))
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].TotalQuantity)
}

func TestAggregate_ForceIGSTFoldsSplit(t *testing.T) {
	rows := []domain.PricedRow{
		priced("0.18", "L", "FG", "HARYANA", 1, "1000.00", "90.00", "90.00", "0"),
		priced("0.18", "L", "FG", "DELHI", 1, "1000.00", "0", "0", "180.00"),
	}

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelAmazonSTR))
	require.Len(t, out, 1)
	assert.True(t, out[0].TotalCGST.IsZero())
	assert.True(t, out[0].TotalSGST.IsZero())
	assert.True(t, out[0].TotalIGST.Equal(d("360.00")))
}

func TestAggregate_KeepBuyerState(t *testing.T) {
	rows := []domain.PricedRow{
		priced("0.18", "L", "FG", "WEST BENGAL", 1, "1000.00", "0", "0", "180.00"),
		priced("0.18", "L", "FG", "KERALA", 1, "1000.00", "0", "0", "180.00"),
	}

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelFlipkart))
	require.Len(t, out, 2, "buyer state splits groups for flipkart")
	assert.Equal(t, "KERALA", out[0].BuyerState)
	assert.Equal(t, "WEST BENGAL", out[1].BuyerState)
}

func TestAggregate_NetsRefunds(t *testing.T) {
	rows := []domain.PricedRow{
		priced("0.18", "L", "FG", "HARYANA", 4, "4000.00", "360.00", "360.00", "0"),
		priced("0.18", "L", "FG", "HARYANA", -1, "-1000.00", "-90.00", "-90.00", "0"),
	}

	out := pivot.Aggregate(rows, pivot.PolicyFor(domain.ChannelPepperfry))
	require.Len(t, out, 1)
	assert.Equal(t, int64(3), out[0].TotalQuantity)
	assert.True(t, out[0].TotalTaxable.Equal(d("3000.00")))
	assert.True(t, out[0].TotalCGST.Equal(d("270.00")))
}
