package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig configures the MinIO backend.
type MinIOConfig struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // optional bucket root; defaults to endpoint/bucket
}

// publicReadPolicy lets anonymous clients GET objects so image URLs work
// without signing.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// MinIO implements Storage against a MinIO server. It is safe for
// concurrent use by multiple goroutines.
type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIO creates a MinIO storage client. It validates connectivity and
// ensures the bucket exists (creating it with a public-read policy if missing).
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		if err := cli.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}

	return newMinIO(cli, cfg.Bucket, minioBaseURL(endpoint, cfg.UseSSL, cfg.Bucket, cfg.PublicURL)), nil
}

func newMinIO(cli *minio.Client, bucket, baseURL string) *MinIO {
	return &MinIO{client: cli, bucket: bucket, baseURL: baseURL}
}

// minioBaseURL is the prefix every object URL starts with. A public URL
// points at the bucket root, as it does for S3. Without one, objects are
// addressed path-style on the endpoint.
func minioBaseURL(endpoint string, useSSL bool, bucket, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint + "/" + bucket
}

// Put uploads an object using streaming I/O only.
func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("minio upload %s/%s: %w", m.bucket, key, err)
	}
	return ObjectInfo{
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opt.ContentType,
		URL:         m.URL(key),
	}, nil
}

// Delete removes an object by key.
func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete %s/%s: %w", m.bucket, key, err)
	}
	return nil
}

// URL returns the public URL of key.
func (m *MinIO) URL(key string) string {
	return m.baseURL + "/" + key
}

// KeyFromURL extracts the key from a URL produced by URL.
func (m *MinIO) KeyFromURL(rawURL string) (string, bool) {
	return trimPrefix(rawURL, m.baseURL+"/")
}
