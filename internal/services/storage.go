package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/example/storefront/internal/config"
)

// ProductImageDir is the bucket prefix product images are stored under.
const ProductImageDir = "products-image"

// ObjectStorage persists uploaded files and addresses them by public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, dir, originalName, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// S3Storage talks to any S3-compatible endpoint through minio-go.
type S3Storage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	now      func() time.Time
}

// NewS3Storage builds a client for cfg. It does not contact the endpoint.
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &S3Storage{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		now:      time.Now,
	}, nil
}

// Upload stores body under dir and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, dir, originalName, contentType string, body io.Reader, size int64) (string, error) {
	key := ObjectKey(dir, originalName, s.now())
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key), nil
}

// Delete removes the object addressed by fileURL.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key, err := KeyFromURL(fileURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

var (
	dotsAndSpaces = regexp.MustCompile(`[. ]+`)
	dashes        = regexp.MustCompile(`-+`)
)

// ObjectKey names an upload "<dir>/<unix millis>-<cleaned name>". The file
// extension survives; other dots and spaces become dashes.
func ObjectKey(dir, originalName string, at time.Time) string {
	base, ext := originalName, ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		base, ext = originalName[:i], strings.ToLower(originalName[i:])
	}
	base = strings.TrimSuffix(base, ".")
	base = dashes.ReplaceAllString(dotsAndSpaces.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "file"
	}

	name := fmt.Sprintf("%d-%s%s", at.UnixMilli(), base, ext)
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// KeyFromURL recovers the object key from a URL produced by Upload.
func KeyFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return "", fmt.Errorf("file url %q has no object key", fileURL)
	}
	return key, nil
}

// ErrStorageDisabled is returned by DisabledStorage.
var ErrStorageDisabled = errors.New("object storage is not configured")

// DisabledStorage stands in when no storage endpoint is configured. Uploads
// fail and deletes are no-ops.
type DisabledStorage struct{}

func (DisabledStorage) Upload(context.Context, string, string, string, io.Reader, int64) (string, error) {
	return "", ErrStorageDisabled
}

func (DisabledStorage) Delete(context.Context, string) error {
	return nil
}
