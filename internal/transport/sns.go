// internal/transport/sns.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace-notify/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the slice of the SNS client the sink uses, defined for mocking.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes each record as a JSON message to a single topic, with
// the category and priority attached as message attributes.
type SNSSink struct {
	client   SNSAPI
	topicARN string
}

func NewSNSSink(ctx context.Context, region, topicARN string) (*SNSSink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SNSSink{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

// NewSNSSinkWithClient wires an existing client, used by tests.
func NewSNSSinkWithClient(client SNSAPI, topicARN string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN}
}

func (s *SNSSink) Push(ctx context.Context, rec *models.NotificationRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"category": stringAttribute(string(rec.Category)),
			"priority": stringAttribute(string(rec.Priority)),
		},
	})
	if err != nil {
		return fmt.Errorf("publish record %s: %w", rec.ID, err)
	}
	return nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
