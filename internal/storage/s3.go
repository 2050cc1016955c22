package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"alcyxob/gym-membership/internal/config"
)

// s3Storage implements FileStorage on S3 or an S3-compatible store (MinIO, Spaces).
type s3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	log           *slog.Logger
}

// NewS3Storage creates an S3-backed FileStorage.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// S3-compatible stores generally need path-style addressing.
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 storage initialized", "endpoint", endpoint, "bucket", cfg.BucketName)
	return &s3Storage{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		log:           logger,
	}, nil
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (s *s3Storage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		s.log.Error("presign put failed", "key", objectKey, "error", err)
		return "", err
	}
	return req.URL, nil
}

func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		s.log.Error("presign get failed", "key", objectKey, "error", err)
		return "", err
	}
	return req.URL, nil
}

func (s *s3Storage) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		s.log.Error("delete object failed", "key", objectKey, "bucket", s.bucketName, "error", err)
		return err
	}
	s.log.Info("deleted object", "key", objectKey, "bucket", s.bucketName)
	return nil
}
