package invoice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/invoice"
	"tallyflow/internal/repository/memory"
)

var testKey = domain.InvoiceSequence{
	GSTIN:      "06ABCDE1234F1Z5",
	Channel:    domain.ChannelAmazonMTR,
	BuyerState: "HARYANA",
	Month:      "2025-08",
}

func TestAllocator_NextAndCommit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSequenceRepo()
	alloc := invoice.NewAllocator(repo)

	for want := int64(1); want <= 3; want++ {
		got, err := alloc.Next(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	require.NoError(t, alloc.Commit(ctx))

	// A later allocation resumes from the committed high-water mark.
	got, err := alloc.Next(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestAllocator_ReleaseReusesNumbers(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSequenceRepo()
	alloc := invoice.NewAllocator(repo)

	_, err := alloc.Next(ctx, testKey)
	require.NoError(t, err)
	_, err = alloc.Next(ctx, testKey)
	require.NoError(t, err)

	alloc.Release()

	got, err := alloc.Next(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "released numbers are handed out again")
}

func TestAllocator_CommitConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSequenceRepo()

	first := invoice.NewAllocator(repo)
	second := invoice.NewAllocator(repo)

	_, err := first.Next(ctx, testKey)
	require.NoError(t, err)
	_, err = second.Next(ctx, testKey)
	require.NoError(t, err)

	require.NoError(t, first.Commit(ctx))
	err = second.Commit(ctx)
	require.ErrorIs(t, err, domain.ErrInvoiceSequenceConflict)

	// After Reset the loser re-reads and gets fresh numbers.
	second.Reset()
	got, err := second.Next(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	require.NoError(t, second.Commit(ctx))
}

func TestAllocator_IndependentKeys(t *testing.T) {
	ctx := context.Background()
	alloc := invoice.NewAllocator(memory.NewSequenceRepo())

	other := testKey
	other.BuyerState = "DELHI"

	a, err := alloc.Next(ctx, testKey)
	require.NoError(t, err)
	b, err := alloc.Next(ctx, other)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(1), b)
}
