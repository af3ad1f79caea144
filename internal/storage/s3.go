package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/foodreels/backend/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider uploads objects to an S3 bucket (or an S3-compatible endpoint).
type S3Provider struct {
	client        *s3.Client
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
}

// NewS3Provider creates an S3 client from static credentials. optFns are
// applied to the S3 client options after the endpoint settings.
func NewS3Provider(ctx context.Context, cfg config.S3Config, optFns ...func(*s3.Options)) (*S3Provider, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("S3 bucket and region are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}}, optFns...)

	return &S3Provider{
		client:        s3.NewFromConfig(awsCfg, opts...),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (p *S3Provider) Name() string { return "s3" }

// Upload puts data at key and returns the object's public URL.
func (p *S3Provider) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return p.objectURL(key), nil
}

func (p *S3Provider) objectURL(key string) string {
	switch {
	case p.publicBaseURL != "":
		return fmt.Sprintf("%s/%s", p.publicBaseURL, key)
	case p.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", p.endpoint, p.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
	}
}
