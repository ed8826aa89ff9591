// Package storage uploads receipt images to NCP Object Storage through
// its S3-compatible API. Uploaded objects are public-read so the OCR
// provider can fetch them by URL.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// Config holds object storage client configuration.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Client wraps the S3 client with the catch-and-report discipline the
// pipeline expects: no method lets a provider error escape.
type Client struct {
	s3       *s3.Client
	endpoint string
	bucket   string
	logger   *zap.Logger
}

// NewClient creates an object storage client. When credentials or the
// bucket name are absent the client stays unconfigured and every upload
// reports Success=false without touching the network.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	c := &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		bucket:   cfg.Bucket,
		logger:   logger,
	}

	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		logger.Warn("Object storage not configured, uploads will degrade to direct OCR")
		return c, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	c.s3 = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return c, nil
}

// Configured reports whether the client can reach the bucket.
func (c *Client) Configured() bool {
	return c.s3 != nil
}

// UploadReceipt uploads a receipt image under a collision-resistant key
// and returns the public URL. Failures are reported in the result,
// never returned as errors.
func (c *Client) UploadReceipt(ctx context.Context, image []byte, filename string) models.StorageResult {
	if !c.Configured() {
		return models.StorageResult{Success: false, Error: "object storage not configured"}
	}

	ext := fileExtension(filename)
	key := fmt.Sprintf("receipts/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	c.logger.Info("Uploading receipt to object storage",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.Int("size", len(image)))

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(contentType(ext)),
		// The OCR provider fetches the object by URL.
		ACL: types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		c.logger.Error("Object storage upload failed", zap.Error(err))
		return models.StorageResult{Success: false, Error: err.Error()}
	}

	url := fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	c.logger.Info("Receipt uploaded", zap.String("url", url))

	return models.StorageResult{
		Success: true,
		URL:     url,
		Key:     key,
		Bucket:  c.bucket,
	}
}

// DeleteReceipt removes an uploaded receipt object.
func (c *Client) DeleteReceipt(ctx context.Context, key string) models.StorageResult {
	if !c.Configured() {
		return models.StorageResult{Success: false, Error: "object storage not configured"}
	}

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error("Object storage delete failed", zap.String("key", key), zap.Error(err))
		return models.StorageResult{Success: false, Error: err.Error()}
	}

	c.logger.Info("Receipt deleted from object storage", zap.String("key", key))
	return models.StorageResult{Success: true, Key: key}
}

// EnsureBucketExists checks for the bucket and creates it when missing.
// Idempotent.
func (c *Client) EnsureBucketExists(ctx context.Context) models.StorageResult {
	if !c.Configured() {
		return models.StorageResult{Success: false, Error: "object storage not configured"}
	}

	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return models.StorageResult{Success: true, Bucket: c.bucket}
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		c.logger.Error("Bucket check failed", zap.String("bucket", c.bucket), zap.Error(err))
		return models.StorageResult{Success: false, Error: err.Error()}
	}

	c.logger.Info("Creating bucket", zap.String("bucket", c.bucket))
	if _, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		c.logger.Error("Bucket creation failed", zap.Error(err))
		return models.StorageResult{Success: false, Error: err.Error()}
	}

	return models.StorageResult{Success: true, Bucket: c.bucket}
}

func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "jpg"
	}
	return strings.ToLower(filename[idx+1:])
}

func contentType(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
