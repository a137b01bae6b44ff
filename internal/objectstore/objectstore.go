// FilePath: internal/objectstore/objectstore.go
package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/agrirobotics/datalake/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	nuts "github.com/vaudience/go-nuts"
)

// uploadPartSize is the multipart part size for streamed uploads.
// Larger parts cut request overhead on big images at the cost of
// per-part memory.
const uploadPartSize = 10 * 1024 * 1024

// Client wraps the MinIO SDK with the operations the ingest path
// needs: idempotent bucket creation, streamed puts of unknown length,
// and best-effort deletes for saga compensation.
type Client struct {
	client *minio.Client
	bucket string
}

// NewClient creates a long-lived object store client. The client is
// initialized once at startup and shared across requests.
func NewClient(cfg config.ObjectStoreConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	nuts.L.Infof("[ObjectStore] Client initialized for %s (bucket %s)", cfg.Endpoint, cfg.Bucket)
	return &Client{client: mc, bucket: cfg.Bucket}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket creates the bucket if it does not exist. A concurrent
// first-caller racing the creation gets "already owned" from the
// store; that is success, not an error.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}

	err = c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}

	nuts.L.Infof("[ObjectStore] Created bucket %s", c.bucket)
	return nil
}

// Put streams an object of unknown length to the store and returns the
// canonical URL recorded in the relational store.
func (c *Client) Put(ctx context.Context, objectName string, reader io.Reader, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, objectName, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    uploadPartSize,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", objectName, err)
	}
	return fmt.Sprintf("minio://%s/%s", c.bucket, objectName), nil
}

// Remove deletes an object. Used as the compensating action when the
// relational write after an upload fails.
func (c *Client) Remove(ctx context.Context, objectName string) error {
	err := c.client.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", objectName, err)
	}
	return nil
}
