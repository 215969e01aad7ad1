package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const s3Timeout = 10 * time.Second

type S3Config struct {
	Endpoint        string `yaml:"endpoint" toml:"endpoint"`
	Bucket          string `yaml:"bucket" toml:"bucket"`
	Region          string `yaml:"region" toml:"region"`
	AccessKey       string `yaml:"access_key" toml:"access_key"`
	SecretKey       string `yaml:"secret_key" toml:"secret_key"` //nolint:gosec // connection config
	UsePathStyle    bool   `yaml:"use_path_style" toml:"use_path_style"`
	DisableChecksum bool   `yaml:"disable_checksum" toml:"disable_checksum"`
}

// S3Backend stores each key as the object <key>.json in one bucket.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// NewS3Client builds a client pinned to cfg.Endpoint with static
// credentials. Path-style addressing and checksum relaxation are opt-in for
// MinIO-like servers that need them.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		return nil, errors.New("S3 endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid S3 endpoint: %w", err)
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.DisableChecksum {
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	}), nil
}

// NewS3Backend connects to the bucket and checks that it exists.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b := &S3Backend{client: client, bucket: cfg.Bucket}
	if err := b.Ping(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// S3ObjectKey is the object name a board key is stored under.
func S3ObjectKey(key string) string {
	return key + ".json"
}

func (b *S3Backend) Name() string { return BackendS3 }

// Ping checks that the configured bucket exists.
func (b *S3Backend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		if isS3NotFound(err, "NotFound", "NoSuchBucket") {
			return fmt.Errorf("bucket %s does not exist", b.bucket)
		}
		return fmt.Errorf("error checking bucket: %w", err)
	}
	return nil
}

func (b *S3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(S3ObjectKey(key)),
	})
	if err != nil {
		if isS3NotFound(err, "NoSuchKey", "NotFound") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading %s from S3: %w", key, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", key, err)
	}
	return data, nil
}

func (b *S3Backend) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(S3ObjectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("error saving %s to S3: %w", key, err)
	}
	return nil
}

func (b *S3Backend) Close() error { return nil }

// isS3NotFound reports whether err is an S3 API error with one of codes.
func isS3NotFound(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return slices.Contains(codes, apiErr.ErrorCode())
}
