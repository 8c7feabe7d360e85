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

const pepperfryCSV = `Invoice Date,Order Id,SKU,Quantity,Taxable Value,Gst Rate,Customer State
2025-08-01,PF-100,SOFA-1,4,20000.00,18,KARNATAKA
2025-08-02,PF-101,CHAIR-2,1,3000.00,18,KERALA
`

const pepperfryReturnsCSV = `Order Id,SKU,Returned Qty
PF-100,SOFA-1,1
PF-999,GHOST-9,2
`

func TestPepperfry_ReturnsJoin(t *testing.T) {
	n, err := normalize.ForReportType(domain.ReportTypePepperfrySales)
	require.NoError(t, err)

	in := normalize.Input{
		Path:           writeCSV(t, "sales.csv", pepperfryCSV),
		ReturnsPath:    writeCSV(t, "returns.csv", pepperfryReturnsCSV),
		Channel:        domain.ChannelPepperfry,
		GSTIN:          "29ZZZZZ9999Z9Z9",
		Month:          "2025-08",
		DefaultGSTRate: decimal.RequireFromString("0.18"),
	}

	res, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3, "two sales plus one return row")

	ret := res.Rows[2]
	assert.Equal(t, "PF-100", ret.OrderID)
	assert.Equal(t, int64(-1), ret.Quantity)
	// One of four units returned: a quarter of the taxable value, negated.
	assert.True(t, ret.TaxableValue.Equal(decimal.RequireFromString("-5000.00")), "got %s", ret.TaxableValue)
	assert.Equal(t, int64(1), ret.ReturnedQty)
	assert.Equal(t, int64(4), ret.TotalQty)

	// The unmatched return is recorded, not fatal.
	require.Len(t, res.Dropped, 1)
	assert.Contains(t, res.Dropped[0].Message, "unknown order")
}

func TestPepperfry_NoReturnsFile(t *testing.T) {
	n, err := normalize.ForReportType(domain.ReportTypePepperfrySales)
	require.NoError(t, err)

	in := normalize.Input{
		Path:           writeCSV(t, "sales.csv", pepperfryCSV),
		Channel:        domain.ChannelPepperfry,
		GSTIN:          "29ZZZZZ9999Z9Z9",
		Month:          "2025-08",
		DefaultGSTRate: decimal.RequireFromString("0.18"),
	}

	res, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}
