// Package evidence stores report evidence files in object storage.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxFileSize is enforced before any upload is attempted; oversize
// files never reach storage.
const MaxFileSize = 10 * 1024 * 1024

// Store is the blob storage surface the report flow depends on.
type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	PublicURL(path string) string
}

// Config for the S3-compatible backend.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store stores evidence in an S3-compatible bucket via minio-go.
type S3Store struct {
	client *minio.Client
	cfg    Config
}

func NewS3Store(cfg Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &S3Store{client: client, cfg: cfg}, nil
}

func (s *S3Store) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("file exceeds %d byte limit", MaxFileSize)
	}

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, path,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

func (s *S3Store) PublicURL(path string) string {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket,
		strings.TrimPrefix((&url.URL{Path: path}).EscapedPath(), "/"))
}

// ObjectPath derives the storage path for a report's evidence file.
// The path is keyed by the report id, so the report row must exist
// before the upload can be named.
func ObjectPath(reportID, fileName string) string {
	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		ext = fileName[i:]
	}
	return "evidence/" + reportID + ext
}
