package gst

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

// Split is the computed GST breakdown for one taxable event.
type Split struct {
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	TotalTax    decimal.Decimal
	TotalAmount decimal.Decimal
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var two = decimal.NewFromInt(2)

// Compute applies the GST split rule to one row. The base is
// taxable + shipping; forceIGST is the channel policy for settlement
// reports, which post IGST even when seller and buyer states coincide.
func Compute(taxable, shipping, rate decimal.Decimal, gstin, buyerState string, forceIGST bool) Split {
	base := taxable.Add(shipping)
	s := Split{
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: decimal.Zero,
	}

	switch {
	case rate.IsZero():
		// all components stay zero
	case forceIGST:
		s.IGST = Round2(base.Mul(rate))
	case Intrastate(gstin, buyerState):
		half := Round2(base.Mul(rate).Div(two))
		s.CGST = half
		s.SGST = half
	default:
		s.IGST = Round2(base.Mul(rate))
	}

	s.TotalTax = s.CGST.Add(s.SGST).Add(s.IGST)
	s.TotalAmount = base.Add(s.TotalTax)
	return s
}

// Intrastate reports whether the buyer state matches the seller state
// encoded in the GSTIN prefix.
func Intrastate(gstin, buyerState string) bool {
	seller := StateFromGSTIN(gstin)
	return seller != "" && seller == CanonicalState(buyerState)
}

// AdjustForReturns reduces the taxable value proportionally to the
// returned quantity. totalQty <= 0 leaves the value untouched.
func AdjustForReturns(taxable decimal.Decimal, returnedQty, totalQty int64) decimal.Decimal {
	if returnedQty <= 0 || totalQty <= 0 {
		return taxable
	}
	kept := decimal.NewFromInt(totalQty - returnedQty)
	return Round2(taxable.Mul(kept).Div(decimal.NewFromInt(totalQty)))
}

// Validate checks the exclusive-path invariant: a split is either
// CGST+SGST, IGST-only, or fully zero. Refund rows carry negative
// components, so the check is on non-zero rather than positive.
func Validate(s Split) error {
	intra := !s.CGST.IsZero() && !s.SGST.IsZero() && s.IGST.IsZero() &&
		s.CGST.Sign() == s.SGST.Sign()
	inter := !s.IGST.IsZero() && s.CGST.IsZero() && s.SGST.IsZero()
	zero := s.CGST.IsZero() && s.SGST.IsZero() && s.IGST.IsZero()

	if intra || inter || zero {
		return nil
	}
	return fmt.Errorf("%w: cgst=%s sgst=%s igst=%s",
		domain.ErrTaxSplitInvariant, s.CGST, s.SGST, s.IGST)
}
