package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImageStore persists generated images and returns the URL clients should load them from.
type ImageStore interface {
	Put(ctx context.Context, key, mimeType string, data []byte) (string, error)
}

// NewImageKey returns a unique object key for a generated image, e.g. generated/2026/10/<uuid>.png
func NewImageKey(now time.Time, mimeType string) string {
	return fmt.Sprintf("generated/%s/%s%s", now.UTC().Format("2006/01"), uuid.NewString(), extensionFor(mimeType))
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// DataURLStore keeps nothing and inlines the image into a data: URL.
type DataURLStore struct{}

func (DataURLStore) Put(_ context.Context, _ string, mimeType string, data []byte) (string, error) {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

type S3ImageStore struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3ImageStore loads AWS credentials from the default chain.
func NewS3ImageStore(ctx context.Context, bucket, region, publicBaseURL string) (*S3ImageStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3ImageStore{
		client:        s3.NewFromConfig(cfg),
		bucket:        bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (s *S3ImageStore) Put(ctx context.Context, key, mimeType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(mimeType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(data)).Msg("Image uploaded")
	return s.objectURL(key), nil
}

func (s *S3ImageStore) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
