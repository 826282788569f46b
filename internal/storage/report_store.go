package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportStore archives generated reports
type ReportStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type MinioReportStore struct {
	client *minio.Client
	bucket string
}

func NewMinioReportStore(cfg MinioConfig) (*MinioReportStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioReportStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket on first start
func (s *MinioReportStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioReportStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return ObjectLocation(s.bucket, name), nil
}

func ObjectLocation(bucket, name string) string {
	return "/" + path.Join(bucket, name)
}

// ReportObjectName builds the object key for an assessment export
func ReportObjectName(assessmentID string, at time.Time) string {
	return path.Join("assessments", assessmentID, fmt.Sprintf("sessions-%s.xlsx", at.UTC().Format("20060102T150405Z")))
}
