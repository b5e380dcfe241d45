package s3fs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig describes how to reach the S3 service.
type ClientConfig struct {
	Region string

	// Endpoint overrides the AWS endpoint (MinIO, Localstack, ...). It also
	// switches the client to path-style addressing.
	Endpoint string

	// Static credentials. Empty means the default credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// NewClient builds an S3 client from cfg.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3fs: region is required")
	}

	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3fs: loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
