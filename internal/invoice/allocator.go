package invoice

import (
	"context"
	"fmt"
	"sync"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

// Allocator hands out contiguous sequence blocks per
// (gstin, channel, buyer_state, month) and holds them in memory until the
// stage commits. A failed stage calls Release and a retried run reuses the
// same numbers.
type Allocator struct {
	repo port.SequenceRepository

	mu   sync.Mutex
	held map[string]*block
}

type block struct {
	key   domain.InvoiceSequence
	start int64 // first value handed out
	next  int64 // next value to hand out
}

// NewAllocator creates an Allocator backed by the durable sequence store.
func NewAllocator(repo port.SequenceRepository) *Allocator {
	return &Allocator{repo: repo, held: make(map[string]*block)}
}

func seqKey(k domain.InvoiceSequence) string {
	return fmt.Sprintf("%s|%s|%s|%s", k.GSTIN, k.Channel, k.BuyerState, k.Month)
}

// Next returns the next sequence number for the key, reading the durable
// high-water mark on first use and counting up in memory after that.
func (a *Allocator) Next(ctx context.Context, key domain.InvoiceSequence) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := seqKey(key)
	b, ok := a.held[k]
	if !ok {
		start, err := a.repo.NextValue(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("allocator.Next: %w", err)
		}
		b = &block{key: key, start: start, next: start}
		a.held[k] = b
	}
	v := b.next
	b.next++
	return v, nil
}

// Commit persists every held block's new high-water mark with a
// compare-and-swap against the value read at allocation time. Any conflict
// surfaces as domain.ErrInvoiceSequenceConflict and leaves the allocator
// holding its blocks so the caller can retry after re-reading.
func (a *Allocator) Commit(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, b := range a.held {
		if b.next == b.start {
			continue // key touched but nothing allocated
		}
		if err := a.repo.Commit(ctx, b.key, b.start, b.next); err != nil {
			return fmt.Errorf("allocator.Commit %s: %w", seqKey(b.key), err)
		}
	}
	a.held = make(map[string]*block)
	return nil
}

// Release drops all held blocks without persisting. The numbers were never
// committed, so a retried run does not skip them.
func (a *Allocator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.held = make(map[string]*block)
}

// Reset re-reads the durable high-water marks on next use. Called between
// retry attempts after a sequence conflict.
func (a *Allocator) Reset() {
	a.Release()
}
