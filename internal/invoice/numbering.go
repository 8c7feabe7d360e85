package invoice

import (
	"fmt"
	"strings"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// channelPrefix maps each channel to its invoice number prefix.
var channelPrefix = map[domain.Channel]string{
	domain.ChannelAmazonMTR: "AMZ",
	domain.ChannelAmazonSTR: "AMZST",
	domain.ChannelFlipkart:  "FLIP",
	domain.ChannelPepperfry: "PEPP",
}

// Prefix returns the invoice prefix for a channel. Unknown channels fall
// back to the first three letters of the uppercased channel name.
func Prefix(channel domain.Channel) string {
	if p, ok := channelPrefix[channel]; ok {
		return p
	}
	up := strings.ToUpper(string(channel))
	if len(up) > 3 {
		up = up[:3]
	}
	return up
}

// Format builds an invoice number: {PREFIX}-{ST}-{MM}-{NNNN}.
// month is the run month in YYYY-MM form.
func Format(channel domain.Channel, buyerState, month string, seq int64) string {
	return fmt.Sprintf("%s-%s-%s-%04d",
		Prefix(channel), gst.StateAbbreviation(buyerState), monthDigits(month), seq)
}

// ExpenseVoucherNo builds an expense voucher number:
// EXP{state_code}{YY}{MM}{NNNN}, keyed per (gstin, month).
func ExpenseVoucherNo(gstin, month string, seq int64) string {
	return fmt.Sprintf("EXP%s%s%s%04d",
		gst.StateCodeFromGSTIN(gstin), yearDigits(month), monthDigits(month), seq)
}

func monthDigits(month string) string {
	if len(month) == 7 { // YYYY-MM
		return month[5:7]
	}
	return "00"
}

func yearDigits(month string) string {
	if len(month) == 7 {
		return month[2:4]
	}
	return "00"
}
