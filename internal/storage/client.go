// Package storage provides object storage for lead documents and import
// files, backed by a MinIO or S3-compatible server.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"counsel_portal_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is the expiration time for presigned upload and
// download URLs.
const PresignedURLTTL = 15 * time.Minute

// PresignedURL is a short-lived URL for direct browser upload or download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client wraps a MinIO client scoped to the lead documents bucket.
type Client struct {
	client *minio.Client
	bucket string
}

// New builds a storage client from configuration. It fails when MinIO is
// not configured; callers should check IsMinIOEnabled first.
func New(cfg config.MinIOConfig) (*Client, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("minio is not configured")
	}

	mc, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		client: mc,
		bucket: cfg.GetMinioBucketLeadDocuments(),
	}, nil
}

// EnsureBucket creates the documents bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
		}
	}
	return nil
}

// UploadObject stores a file under folder and returns its object key. A
// short random suffix keeps distinct uploads of the same file name apart.
func (c *Client) UploadObject(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	fileKey := uniqueFileKey(folder, fileName)

	_, err := c.client.PutObject(ctx, c.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return fileKey, nil
}

// PresignedUploadURL creates a presigned PUT URL for direct upload.
func (c *Client) PresignedUploadURL(ctx context.Context, folder, fileName string) (*PresignedURL, error) {
	fileKey := uniqueFileKey(folder, fileName)

	signed, err := c.client.PresignedPutObject(ctx, c.bucket, fileKey, PresignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return &PresignedURL{
		URL:       signed.String(),
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(PresignedURLTTL),
	}, nil
}

// PresignedDownloadURL creates a presigned GET URL for an existing object.
func (c *Client) PresignedDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error) {
	signed, err := c.client.PresignedGetObject(ctx, c.bucket, fileKey, PresignedURLTTL, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURL{
		URL:       signed.String(),
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(PresignedURLTTL),
	}, nil
}

// OpenObject streams an object. The caller must close the reader.
func (c *Client) OpenObject(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, fileKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", fileKey, err)
	}
	return obj, nil
}

// RemoveObject deletes an object from the bucket.
func (c *Client) RemoveObject(ctx context.Context, fileKey string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", fileKey, err)
	}
	return nil
}

func uniqueFileKey(folder, fileName string) string {
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	unique := fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext)
	return filepath.ToSlash(filepath.Join(folder, unique))
}
