package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
	infraconfig "github.com/gestion-compras/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3AttachmentStorage implements AttachmentStorage
var _ purchasingapp.AttachmentStorage = (*S3AttachmentStorage)(nil)

// s3API is the subset of the S3 client used here
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3AttachmentStorage stores attachments in any S3-compatible bucket
// (AWS S3, MinIO, RustFS).
type S3AttachmentStorage struct {
	client    s3API
	bucket    string
	endpoint  string
	publicURL string
	pathStyle bool
	logger    *zap.Logger
}

// S3Option is a functional option for configuring S3AttachmentStorage
type S3Option func(*S3AttachmentStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3AttachmentStorage) {
		s.logger = logger
	}
}

// withClient replaces the S3 client, used by tests
func withClient(client s3API) S3Option {
	return func(s *S3AttachmentStorage) {
		s.client = client
	}
}

// NewS3AttachmentStorage creates a new S3AttachmentStorage from configuration
func NewS3AttachmentStorage(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3AttachmentStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	storage := &S3AttachmentStorage{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		pathStyle: cfg.UsePathStyle,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// normalizeEndpoint adds the scheme when missing. An empty endpoint means a
// local MinIO.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return strings.TrimRight(endpoint, "/"), nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3AttachmentStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// another instance may have created it first
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads the attachment
func (s *S3AttachmentStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("Attachment uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int64("size", size))
	return nil
}

// Delete removes the object. S3 treats a missing key as success.
func (s *S3AttachmentStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL returns the public URL of the object. A configured public URL (CDN or
// reverse proxy) takes precedence over the endpoint address.
func (s *S3AttachmentStorage) URL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	if s.pathStyle {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	return u.Scheme + "://" + s.bucket + "." + u.Host + "/" + key
}

// GetBucket returns the bucket name
func (s *S3AttachmentStorage) GetBucket() string {
	return s.bucket
}
