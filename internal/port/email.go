package port

import "context"

// EmailSender defines the contract for approval notification delivery.
type EmailSender interface {
	// SendApprovalDigest notifies the approver address that pending
	// master-data requests are waiting.
	SendApprovalDigest(ctx context.Context, toEmail string, pendingItems, pendingLedgers int) error
}
