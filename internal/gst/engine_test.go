package gst_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

const sellerGSTIN = "06ABCDE1234F1Z5" // HARYANA

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCompute_Intrastate(t *testing.T) {
	s := gst.Compute(d("2118.00"), decimal.Zero, d("0.18"), sellerGSTIN, "HARYANA", false)

	assert.True(t, s.CGST.Equal(d("190.62")), "cgst = %s", s.CGST)
	assert.True(t, s.SGST.Equal(d("190.62")), "sgst = %s", s.SGST)
	assert.True(t, s.IGST.IsZero())
	assert.True(t, s.TotalTax.Equal(d("381.24")))
	assert.True(t, s.TotalAmount.Equal(d("2499.24")))
}

func TestCompute_Interstate(t *testing.T) {
	s := gst.Compute(d("1059.00"), decimal.Zero, d("0.18"), sellerGSTIN, "DELHI", false)

	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.IsZero())
	assert.True(t, s.IGST.Equal(d("190.62")), "igst = %s", s.IGST)
}

func TestCompute_ForceIGSTSameState(t *testing.T) {
	// Settlement reports post IGST even when buyer and seller states match.
	s := gst.Compute(d("1000.00"), decimal.Zero, d("0.18"), sellerGSTIN, "HARYANA", true)

	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.IsZero())
	assert.True(t, s.IGST.Equal(d("180.00")))
}

func TestCompute_ShippingInBase(t *testing.T) {
	s := gst.Compute(d("1000.00"), d("59.00"), d("0.18"), sellerGSTIN, "DELHI", false)

	assert.True(t, s.IGST.Equal(d("190.62")))
	assert.True(t, s.TotalAmount.Equal(d("1249.62")))
}

func TestCompute_ZeroRate(t *testing.T) {
	s := gst.Compute(d("500.00"), d("40.00"), decimal.Zero, sellerGSTIN, "DELHI", false)

	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.IsZero())
	assert.True(t, s.IGST.IsZero())
	assert.True(t, s.TotalAmount.Equal(d("540.00")))
}

func TestCompute_NegativeRefund(t *testing.T) {
	s := gst.Compute(d("-1059.00"), decimal.Zero, d("0.18"), sellerGSTIN, "HARYANA", false)

	assert.True(t, s.CGST.Equal(d("-95.31")))
	assert.True(t, s.SGST.Equal(d("-95.31")))
	assert.NoError(t, gst.Validate(s))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		split   gst.Split
		wantErr bool
	}{
		{"intrastate", gst.Split{CGST: d("90.00"), SGST: d("90.00")}, false},
		{"interstate", gst.Split{IGST: d("180.00")}, false},
		{"all zero", gst.Split{}, false},
		{"mixed paths", gst.Split{CGST: d("90.00"), IGST: d("180.00")}, true},
		{"half split", gst.Split{CGST: d("90.00")}, true},
		{"sign mismatch", gst.Split{CGST: d("90.00"), SGST: d("-90.00")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gst.Validate(tt.split)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrTaxSplitInvariant)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAdjustForReturns(t *testing.T) {
	got := gst.AdjustForReturns(d("1000.00"), 1, 4)
	assert.True(t, got.Equal(d("750.00")), "got %s", got)

	// Zero or negative quantities leave the value untouched.
	assert.True(t, gst.AdjustForReturns(d("1000.00"), 0, 4).Equal(d("1000.00")))
	assert.True(t, gst.AdjustForReturns(d("1000.00"), 2, 0).Equal(d("1000.00")))
}

func TestIntrastate(t *testing.T) {
	assert.True(t, gst.Intrastate(sellerGSTIN, "Haryana"))
	assert.True(t, gst.Intrastate(sellerGSTIN, "06"))
	assert.False(t, gst.Intrastate(sellerGSTIN, "DELHI"))
	assert.False(t, gst.Intrastate("ZZ", "HARYANA"))
}
