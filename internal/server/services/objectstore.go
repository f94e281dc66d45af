package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	sc "github.com/dmitrijs2005/assetcatalog/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// ObjectStore holds asset file contents.
type ObjectStore interface {
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string) (string, error)
	// Delete removes the objects; it attempts every key and joins the failures.
	Delete(ctx context.Context, keys []string) error
}

// NewObjectStore returns an S3 store for the configured bucket, or a store
// that reports common.ErrorStorageDisabled when no bucket is set.
func NewObjectStore(cfg *sc.Config) ObjectStore {
	if cfg.S3Bucket == "" {
		return disabledStore{}
	}
	return &S3Store{config: cfg}
}

type disabledStore struct{}

func (disabledStore) PresignGet(context.Context, string) (string, error) {
	return "", common.ErrorStorageDisabled
}

func (disabledStore) Delete(context.Context, []string) error {
	return common.ErrorStorageDisabled
}

// S3Store talks to an S3-compatible backend (AWS or MinIO).
type S3Store struct {
	config *sc.Config
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *S3Store) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket
	var errs []error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
