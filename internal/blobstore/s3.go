package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// S3API is the subset of the S3 client used by the uploader
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes objects into one bucket
type S3Uploader struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
// A custom Endpoint switches to path-style addressing (MinIO, LocalStack).
func NewS3Uploader(ctx context.Context, cfg Config, logger *slog.Logger) (*S3Uploader, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, cfg, logger), nil
}

func newS3Uploader(client S3API, cfg Config, logger *slog.Logger) *S3Uploader {
	baseURL := strings.TrimSpace(cfg.PublicBaseURL)
	switch {
	case baseURL != "":
	case strings.TrimSpace(cfg.Endpoint) != "":
		baseURL = strings.TrimSpace(cfg.Endpoint)
	default:
		baseURL = fmt.Sprintf("s3.%s.amazonaws.com", strings.TrimSpace(cfg.Region))
	}

	return &S3Uploader{
		client:  client,
		bucket:  cfg.Container,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Upload puts data under key name, replacing any existing object
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		u.logger.Error("Error uploading report to S3",
			slog.String("bucket", u.bucket),
			slog.String("key", name),
			slog.Any("error", err),
		)
		return domain.NewTransportError("put object", err)
	}

	u.logger.Info("Report uploaded to S3",
		slog.String("bucket", u.bucket),
		slog.String("key", name),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// URL returns the path-style address of name
func (u *S3Uploader) URL(name string) string {
	return joinURL(u.baseURL, u.bucket, name)
}
