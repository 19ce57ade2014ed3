package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/supplylink/core-service/internal/events"
)

// EmailSender sends order notifications via AWS SES (SESv2 API)
type EmailSender struct {
	sesClient *sesv2.Client
	fromEmail string
}

// NewEmailSender creates an email sender, or nil when SES_FROM_EMAIL
// is not configured.
func NewEmailSender(cfg aws.Config) *EmailSender {
	from := os.Getenv("SES_FROM_EMAIL")
	if from == "" {
		return nil
	}
	region := cfg.Region
	if region == "" {
		region = os.Getenv("SES_AWS_REGION")
		if region == "" {
			if os.Getenv("AWS_DEFAULT_REGION") != "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			} else {
				region = "eu-central-1"
			}
		}
	}
	cfg.Region = region
	return &EmailSender{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: from,
	}
}

// SendOrderUpdate sends one order status email
func (e *EmailSender) SendOrderUpdate(ctx context.Context, toEmail, subject, line string, ev events.OrderEvent) error {
	body := e.generateOrderHTML(subject, line, ev)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{toEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(body)}},
			},
		},
	}
	if _, err := e.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// generateOrderHTML creates the HTML email template
func (e *EmailSender) generateOrderHTML(subject, line string, ev events.OrderEvent) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>%s</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333;">
    <h2>%s</h2>
    <p>%s</p>
    <p style="color: #777; font-size: 12px;">Order reference: %s</p>
</body>
</html>`, subject, subject, line, ev.OrderID)
}
