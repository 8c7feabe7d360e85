package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/resolver"
)

func TestResolveLedgers(t *testing.T) {
	snap := resolver.NewLedgerSnapshot([]domain.LedgerMaster{
		{Channel: domain.ChannelAmazonMTR, BuyerState: "HARYANA", LedgerName: "Amazon Sales HR", ApprovedBy: domain.SystemApprover},
	})
	rows := []domain.EnrichedRow{
		{CanonicalRow: domain.CanonicalRow{Channel: domain.ChannelAmazonMTR, BuyerState: "Haryana"}},
		{CanonicalRow: domain.CanonicalRow{Channel: domain.ChannelAmazonMTR, BuyerState: "DELHI"}},
		{CanonicalRow: domain.CanonicalRow{Channel: domain.ChannelAmazonMTR, BuyerState: "DELHI"}},
	}

	res := resolver.ResolveLedgers(rows, snap)
	require.Len(t, res.Rows, 3)

	assert.True(t, res.Rows[0].LedgerResolved, "state lookup is case-insensitive")
	assert.Equal(t, "Amazon Sales HR", res.Rows[0].LedgerName)

	require.Len(t, res.Misses, 1, "repeat misses collapse")
	assert.Equal(t, "DELHI", res.Misses[0].BuyerState)
	assert.Equal(t, "Amazon Mtr DL", res.Misses[0].SuggestedLedgerName)
}

func TestSuggestLedgerName(t *testing.T) {
	assert.Equal(t, "Flipkart WB", resolver.SuggestLedgerName(domain.ChannelFlipkart, "WEST BENGAL"))
	assert.Equal(t, "Amazon Str TN", resolver.SuggestLedgerName(domain.ChannelAmazonSTR, "Tamil Nadu"))
}
