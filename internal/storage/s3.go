package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // Public URL for accessing files (e.g., "http://localhost:9000/avatars")
}

// AvatarMirror copies counterpart avatars from third-party URLs into an
// S3-compatible bucket so the dashboard never hotlinks foreign hosts. A
// mirrored avatar is addressed by counterpart id, making repeat mirrors
// idempotent overwrites.
type AvatarMirror struct {
	client     *s3.Client
	httpClient *http.Client
	bucket     string
	publicURL  string
}

// NewAvatarMirror creates an avatar mirror over S3-compatible storage
func NewAvatarMirror(cfg S3Config) (*AvatarMirror, error) {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &AvatarMirror{
		client:     client,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		bucket:     cfg.Bucket,
		publicURL:  cfg.PublicURL,
	}, nil
}

// Mirror downloads an avatar from its source URL, stores it in the
// bucket under the counterpart's key, and returns the mirrored public
// URL.
func (m *AvatarMirror) Mirror(ctx context.Context, counterpartID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating avatar request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading avatar: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return "", fmt.Errorf("reading avatar body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	key := fmt.Sprintf("avatars/%s%s", counterpartID, extensionForContentType(contentType))

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("uploading avatar to s3: %w", err)
	}

	return fmt.Sprintf("%s/%s", m.publicURL, key), nil
}

// Delete removes a mirrored avatar
func (m *AvatarMirror) Delete(ctx context.Context, key string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
