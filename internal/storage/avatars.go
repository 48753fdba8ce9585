// Package storage issues presigned S3 URLs for avatar uploads. Clients PUT
// the image straight to object storage; the server never proxies the bytes.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"sportbuddy/backend/internal/config"
)

const presignExpiry = 15 * time.Minute

// AvatarStore presigns uploads into the configured bucket.
type AvatarStore struct {
	bucket  string
	presign presigner
}

type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*awsPresignedRequest, error)
}

// awsPresignedRequest narrows the SDK result to what callers use.
type awsPresignedRequest struct {
	URL string
}

type sdkPresigner struct {
	client *s3.PresignClient
}

func (p *sdkPresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*awsPresignedRequest, error) {
	req, err := p.client.PresignPutObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &awsPresignedRequest{URL: req.URL}, nil
}

// NewAvatarStore builds an S3 presign client from config. Static credentials
// and a base endpoint support MinIO in development.
func NewAvatarStore(ctx context.Context, cfg *config.Config) (*AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &AvatarStore{
		bucket:  cfg.S3Bucket,
		presign: &sdkPresigner{client: s3.NewPresignClient(client)},
	}, nil
}

// PresignedUpload is an upload slot: PUT the image to URL, then store Key as
// the avatar reference.
type PresignedUpload struct {
	Key string
	URL string
}

// PresignAvatarUpload returns a fresh upload slot under the account's prefix.
func (s *AvatarStore) PresignAvatarUpload(ctx context.Context, telegramID int64) (*PresignedUpload, error) {
	key := fmt.Sprintf("avatars/%d/%s", telegramID, uuid.NewString())

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign avatar upload: %w", err)
	}

	return &PresignedUpload{Key: key, URL: req.URL}, nil
}
