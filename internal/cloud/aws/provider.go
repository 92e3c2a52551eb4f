// Package aws implements the remote collaborators of the deployment
// pipeline on top of the AWS SDK: the asset object store (S3), stack
// introspection (CloudFormation), and cache invalidation (CloudFront).
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/frontship/frontship/internal/models"
)

// Provider holds the AWS clients the pipeline collaborates with.
type Provider struct {
	Region string

	S3             *s3.Client
	CloudFront     *cloudfront.Client
	CloudFormation *cloudformation.Client
}

// ProviderOption is a functional option for provider configuration.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	profile string
	region  string
}

// WithProfile selects a shared credentials profile.
func WithProfile(profile string) ProviderOption {
	return func(o *providerOptions) { o.profile = profile }
}

// WithRegion overrides the region.
func WithRegion(region string) ProviderOption {
	return func(o *providerOptions) { o.region = region }
}

func loadAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{}
	if profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, &models.RemoteFailure{
			Operation: "load AWS config",
			Cause:     fmt.Errorf("profile %q: %w", profile, err),
		}
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg, nil
}

// NewProvider creates the client set.
func NewProvider(ctx context.Context, options ...ProviderOption) (*Provider, error) {
	opts := &providerOptions{}
	for _, opt := range options {
		opt(opts)
	}
	cfg, err := loadAWSConfig(ctx, opts.profile)
	if err != nil {
		return nil, err
	}
	if opts.region != "" {
		cfg.Region = opts.region
	}
	return &Provider{
		Region:         cfg.Region,
		S3:             s3.NewFromConfig(cfg),
		CloudFront:     cloudfront.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
	}, nil
}

// ValidateCredentials checks that usable AWS credentials are present.
func ValidateCredentials(ctx context.Context, profile string) (string, error) {
	cfg, err := loadAWSConfig(ctx, profile)
	if err != nil {
		return "", err
	}
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", wrapRemote("validate credentials", profile, err)
	}
	return aws.ToString(out.Arn), nil
}
