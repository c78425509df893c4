package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcfg "github.com/circle-space/core/internal/config"
)

const presignExpiry = 15 * time.Minute

// ErrDisabled is returned when object storage is not configured.
var ErrDisabled = errors.New("storage: object storage disabled")

// Client issues presigned S3 links for profile and group images. The
// backend never proxies file bytes; clients upload and download straight
// against the presigned URLs.
type Client struct {
	presign *s3.PresignClient
	bucket  string
}

func New(cfg appcfg.S3Config) (*Client, error) {
	if !cfg.Enable {
		return &Client{}, nil
	}
	if cfg.Bucket == "" || cfg.Region == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key/secret_key are required")
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return &Client{
		presign: s3.NewPresignClient(s3.New(opts)),
		bucket:  cfg.Bucket,
	}, nil
}

// ImageExt maps an accepted image content type onto its file extension.
func ImageExt(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return "jpg", true
	case "image/png":
		return "png", true
	case "image/webp":
		return "webp", true
	default:
		return "", false
	}
}

// Enabled reports whether presigned links can be issued.
func (c *Client) Enabled() bool { return c.presign != nil }

// PresignUpload returns a time-limited PUT URL for the object key.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if c.presign == nil {
		return "", ErrDisabled
	}
	out, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return out.URL, nil
}

// PresignDownload returns a time-limited GET URL for the object key.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	if c.presign == nil {
		return "", ErrDisabled
	}
	out, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return out.URL, nil
}
