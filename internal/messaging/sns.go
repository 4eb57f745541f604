package messaging

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSTexter sends SMS through Amazon SNS.
type SNSTexter struct {
	client   *sns.Client
	senderID string
}

func NewSNSTexter(ctx context.Context, region, senderID string) (*SNSTexter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &SNSTexter{client: sns.NewFromConfig(cfg), senderID: senderID}, nil
}

func (t *SNSTexter) SendSMS(ctx context.Context, to, body string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(t.senderID),
			},
		},
	}

	if _, err := t.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publishing sms via sns: %w", err)
	}

	return nil
}
