package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"tallyflow/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendApprovalDigest(ctx context.Context, toEmail string, pendingItems, pendingLedgers int) error {
	subject := fmt.Sprintf("TallyFlow: %d mappings awaiting approval", pendingItems+pendingLedgers)
	htmlBody := buildDigestHTML(pendingItems, pendingLedgers)
	textBody := fmt.Sprintf(
		"There are mappings waiting for your approval:\n\n"+
			"  Item mappings:   %d\n"+
			"  Ledger mappings: %d\n\n"+
			"Runs with strict mapping enabled stay blocked until these are decided.\n\nTallyFlow",
		pendingItems, pendingLedgers)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildDigestHTML(pendingItems, pendingLedgers int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Mappings awaiting approval</h2>
  <p>New master-data mappings were queued during pipeline runs:</p>
  <table style="border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 6px 16px 6px 0;">Item mappings</td><td style="padding: 6px 0; font-weight: bold;">%d</td></tr>
    <tr><td style="padding: 6px 16px 6px 0;">Ledger mappings</td><td style="padding: 6px 0; font-weight: bold;">%d</td></tr>
  </table>
  <p style="color: #666;">Runs with strict mapping enabled stay blocked until these are decided.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">TallyFlow - Marketplace Accounting Pipeline</p>
</body>
</html>`, pendingItems, pendingLedgers)
}
