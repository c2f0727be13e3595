// Package awsconf builds the shared AWS SDK configuration used by the
// Translate and Polly clients.
package awsconf

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Load resolves an aws.Config. Static keys are used when both are set;
// otherwise the SDK default chain (env, shared config, instance role) applies.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		return aws.Config{}, fmt.Errorf("aws region is required")
	}

	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	keyID := strings.TrimSpace(opts.AccessKeyID)
	secret := strings.TrimSpace(opts.SecretAccessKey)
	if keyID != "" && secret != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(keyID, secret, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
