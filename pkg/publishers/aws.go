package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// awsSend delivers one JSON body with string attributes and returns the
// message id assigned by AWS.
type awsSend func(ctx context.Context, body string, attrs map[string]string) (string, error)

// awsPublisher is the SQS or SNS sink; only the send step differs.
type awsPublisher struct {
	id   string
	typ  string
	dest string
	send awsSend
	log  Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSConfig)
	if err != nil {
		return nil, err
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		o.BaseEndpoint = endpointOverride(cfg.SQS.Endpoint)
	})
	return &awsPublisher{
		id:   cfg.ID,
		typ:  TypeSQS,
		dest: cfg.SQS.QueueURL,
		send: sendToQueue(client, cfg.SQS.QueueURL),
		log:  ensureLogger(log),
	}, nil
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSConfig)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = endpointOverride(cfg.SNS.Endpoint)
	})
	return &awsPublisher{
		id:   cfg.ID,
		typ:  TypeSNS,
		dest: cfg.SNS.TopicARN,
		send: sendToTopic(client, cfg.SNS.TopicARN),
		log:  ensureLogger(log),
	}, nil
}

func sendToQueue(client sqsClient, queueURL string) awsSend {
	return func(ctx context.Context, body string, attrs map[string]string) (string, error) {
		values := make(map[string]sqstypes.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			values[k] = sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
		}
		out, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:          aws.String(queueURL),
			MessageBody:       aws.String(body),
			MessageAttributes: values,
		})
		if err != nil {
			return "", err
		}
		return aws.ToString(out.MessageId), nil
	}
}

func sendToTopic(client snsClient, topicARN string) awsSend {
	return func(ctx context.Context, body string, attrs map[string]string) (string, error) {
		values := make(map[string]snstypes.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			values[k] = snstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
		}
		out, err := client.Publish(ctx, &sns.PublishInput{
			TopicArn:          aws.String(topicARN),
			Message:           aws.String(body),
			MessageAttributes: values,
		})
		if err != nil {
			return "", err
		}
		return aws.ToString(out.MessageId), nil
	}
}

func (a *awsPublisher) ID() string   { return a.id }
func (a *awsPublisher) Type() string { return a.typ }
func (a *awsPublisher) Close() error { return nil }

// Publish sends the event as a JSON body; routing attributes travel as
// String message attributes.
func (a *awsPublisher) Publish(ctx context.Context, evt MenuEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msgID, err := a.send(ctx, string(payload), evt.attributes())
	if err != nil {
		a.log.ErrorObj("aws publisher send failed", "publisher_aws_error", map[string]any{
			"publisher_id": a.id,
			"type":         a.typ,
			"destination":  a.dest,
			"menu_date":    evt.MenuDate,
			"error":        err.Error(),
		})
		return fmt.Errorf("%s send to %s: %w", a.typ, a.dest, err)
	}
	a.log.DebugObj("aws publisher delivered event", "publisher_aws_delivery", map[string]any{
		"publisher_id": a.id,
		"type":         a.typ,
		"message_id":   msgID,
		"revision":     evt.Revision,
	})
	return nil
}

// loadAWSConfig resolves region and credentials for SQS and SNS clients.
func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns nil for an empty endpoint so the SDK resolves
// the regional one.
func endpointOverride(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}
