package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tripweave/tripweave-backend/config"
)

const defaultPresignTTL = 15 * time.Minute

// S3FileStorage stores blobs in S3 or any S3-compatible service (R2, MinIO).
type S3FileStorage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	presignTTL time.Duration
}

// NewS3FileStorage builds a client from the storage config. Static keys are
// used when both are set; otherwise the default AWS credential chain applies.
func NewS3FileStorage(ctx context.Context, cfg config.StorageConfig) (*S3FileStorage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := defaultPresignTTL
	if cfg.PresignMinutes > 0 {
		ttl = time.Duration(cfg.PresignMinutes) * time.Minute
	}

	return &S3FileStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: cfg.S3Bucket,
		presignTTL: ttl,
	}, nil
}

func (s *S3FileStorage) Save(ctx context.Context, key string, reader io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("s3 put object failed: %w", err)
	}
	return nil
}

func (s *S3FileStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("s3 get object failed: %w", err)
	}
	return out.Body, nil
}

func (s *S3FileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object failed: %w", err)
	}
	return nil
}

// URL returns a presigned GET link that names the blob by its base key.
func (s *S3FileStorage) URL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	disposition := fmt.Sprintf("inline; filename=\"%s\"", path.Base(key))
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucketName),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("s3 presign failed: %w", err)
	}
	return result.URL, nil
}
