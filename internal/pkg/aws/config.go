package aws

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
)

// NewAWSConfig loads the SDK configuration. When an endpoint is configured,
// calls go there with static test credentials (LocalStack).
func NewAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	if cfg.Endpoint != "" {
		slog.Info("Routing AWS calls to custom endpoint", "endpoint", cfg.Endpoint)
		return awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(cfg.Region),
			awsConfig.WithBaseEndpoint(cfg.Endpoint),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}

	return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
}

// NewSQSClient builds an SQS client from the application configuration.
func NewSQSClient(ctx context.Context, cfg config.AWSConfig) (*sqs.Client, error) {
	awsCfg, err := NewAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(awsCfg), nil
}
