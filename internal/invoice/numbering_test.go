package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tallyflow/internal/domain"
	"tallyflow/internal/invoice"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "AMZ-AP-08-0001",
		invoice.Format(domain.ChannelAmazonMTR, "ANDHRA PRADESH", "2025-08", 1))
	assert.Equal(t, "AMZST-HR-01-0042",
		invoice.Format(domain.ChannelAmazonSTR, "Haryana", "2025-01", 42))
	assert.Equal(t, "FLIP-DL-12-9999",
		invoice.Format(domain.ChannelFlipkart, "DELHI", "2024-12", 9999))
	// Five-digit sequences keep their full width.
	assert.Equal(t, "PEPP-KA-03-10001",
		invoice.Format(domain.ChannelPepperfry, "KARNATAKA", "2025-03", 10001))
}

func TestFormat_UnknownChannel(t *testing.T) {
	assert.Equal(t, "MEE-DL-08-0001",
		invoice.Format(domain.Channel("meesho"), "DELHI", "2025-08", 1))
}

func TestExpenseVoucherNo(t *testing.T) {
	assert.Equal(t, "EXP0625080001", invoice.ExpenseVoucherNo("06ABCDE1234F1Z5", "2025-08", 1))
	assert.Equal(t, "EXP2924120123", invoice.ExpenseVoucherNo("29ZZZZZ9999Z9Z9", "2024-12", 123))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "AMZ", invoice.Prefix(domain.ChannelAmazonMTR))
	assert.Equal(t, "AMZST", invoice.Prefix(domain.ChannelAmazonSTR))
	assert.Equal(t, "SNA", invoice.Prefix(domain.Channel("snapdeal")))
}
