package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/pkg/config"
)

// MinIOClient wraps the MinIO operations used for report archives
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string // e.g. https://minio.example.com when MinIO sits behind a proxy
}

// NewMinIOClient creates a MinIO client and makes sure the bucket exists
func NewMinIOClient(cfg *config.StorageConfig, log *zap.Logger) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	log.Info("✅ MinIO connected successfully",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.BucketName),
	)
	return client, nil
}

// ensureBucket creates the bucket when missing. Reports stay private and are shared
// through presigned URLs only.
func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// PutObject uploads data under objectName
func (m *MinIOClient) PutObject(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// PresignedURL returns a time-limited download URL, rewritten onto the public URL when one
// is configured.
func (m *MinIOClient) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	if m.publicURL == "" {
		return u.String(), nil
	}
	// scheme://endpoint/bucket/object?query -> publicURL/bucket/object?query
	return rewriteHost(u.String(), u.Scheme, u.Host, m.publicURL), nil
}

func rewriteHost(raw, scheme, host, publicURL string) string {
	prefix := scheme + "://" + host
	if !strings.HasPrefix(raw, prefix) {
		return raw
	}
	return publicURL + raw[len(prefix):]
}
