package noop

import (
	"context"
	"log"

	"tallyflow/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs digests to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendApprovalDigest(_ context.Context, toEmail string, pendingItems, pendingLedgers int) error {
	log.Printf("[NOOP EMAIL] Approval digest for %s: %d item mappings, %d ledger mappings pending",
		toEmail, pendingItems, pendingLedgers)
	return nil
}
