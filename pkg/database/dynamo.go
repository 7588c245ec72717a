package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoOptions configures the DynamoDB client. Endpoint is only set for
// local development against DynamoDB Local.
type DynamoOptions struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// OpenDynamo builds a DynamoDB client from the default AWS credential chain,
// optionally overriding the endpoint for local testing.
func OpenDynamo(ctx context.Context, opts DynamoOptions) (*dynamodb.Client, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("dynamo region is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return client, nil
}
