package normalize_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/normalize"
)

const strCSV = `Posting Date,Order Id,SKU,Quantity,Amount,Quantity Returned,Ship To State
2025-08-03,403-001,SKU-A,3,3177.00,1,TAMIL NADU
2025-08-05,403-002,SKU-B,1,"1,059.00",0,07
`

func TestAmazonSTR_Normalize(t *testing.T) {
	n, err := normalize.ForReportType(domain.ReportTypeSettlementSTR)
	require.NoError(t, err)

	in := normalize.Input{
		Path:           writeCSV(t, "str.csv", strCSV),
		Channel:        domain.ChannelAmazonSTR,
		GSTIN:          "06ABCDE1234F1Z5",
		Month:          "2025-08",
		DefaultGSTRate: decimal.RequireFromString("0.18"),
	}

	res, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	first := res.Rows[0]
	assert.Equal(t, int64(3), first.Quantity)
	assert.Equal(t, int64(1), first.ReturnedQty)
	assert.Equal(t, int64(3), first.TotalQty)
	assert.Equal(t, "TAMIL NADU", first.BuyerState)

	// Thousands separators parse and numeric state codes canonicalize.
	second := res.Rows[1]
	assert.True(t, second.TaxableValue.Equal(decimal.RequireFromString("1059.00")))
	assert.Equal(t, "DELHI", second.BuyerState)
}

func TestFlipkart_Normalize(t *testing.T) {
	n, err := normalize.ForReportType(domain.ReportTypeFlipkartSales)
	require.NoError(t, err)

	content := `Invoice Date,Order Id,SKU,Quantity,Taxable Value,Shipping Charges,Gst Rate,Customer State
2025-08-04,OD-1,FK-SKU-1,2,1000.00,59.00,18,WEST BENGAL
`
	in := normalize.Input{
		Path:           writeCSV(t, "flipkart.csv", content),
		Channel:        domain.ChannelFlipkart,
		GSTIN:          "06ABCDE1234F1Z5",
		Month:          "2025-08",
		DefaultGSTRate: decimal.RequireFromString("0.18"),
	}

	res, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "WEST BENGAL", row.BuyerState)
	assert.True(t, row.ShippingValue.Equal(decimal.RequireFromString("59.00")))
	assert.True(t, row.GSTRate.Equal(decimal.RequireFromString("0.18")))
}
