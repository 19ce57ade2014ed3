package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/supplylink/core-service/internal/models"
)

// SmsSender sends order notifications via AWS SNS
type SmsSender struct {
	client *sns.Client
}

// NewSmsSender creates an SMS sender, or nil unless SMS_NOTIFICATIONS
// is enabled.
func NewSmsSender(cfg aws.Config) *SmsSender {
	if os.Getenv("SMS_NOTIFICATIONS") != "true" {
		return nil
	}
	return &SmsSender{client: sns.NewFromConfig(cfg)}
}

// SendOrderUpdate sends one order status SMS. Accounts without a phone
// number in E.164 format are skipped.
func (s *SmsSender) SendOrderUpdate(ctx context.Context, acct models.Account, line string) error {
	if acct.Phone == "" {
		return nil
	}

	messageAttributes := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}

	input := &sns.PublishInput{
		Message:           aws.String(line),
		PhoneNumber:       aws.String(acct.Phone),
		MessageAttributes: messageAttributes,
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}
