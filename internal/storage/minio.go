package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/pulse/internal/config"
	"github.com/your-org/pulse/internal/models"
)

// ArchiveStore keeps verbatim copies of upload bodies in object storage.
// Archival is best-effort; the relational store is the source of truth.
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

func NewArchiveStore(cfg config.MinIOConfig) (*ArchiveStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &ArchiveStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// RawUploadKey builds the object key for one upload body.
func RawUploadKey(userID uuid.UUID, streamType models.StreamType, recordID uuid.UUID) string {
	return fmt.Sprintf("raw/%s/%s/%s.json", userID, streamType, recordID)
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *ArchiveStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// PutRawUpload stores an upload body under the given key.
func (s *ArchiveStore) PutRawUpload(ctx context.Context, key string, body []byte) error {
	reader := bytes.NewReader(body)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put raw upload %s: %w", key, err)
	}
	return nil
}

// GetRawUpload retrieves an archived upload body.
func (s *ArchiveStore) GetRawUpload(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get raw upload %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read raw upload %s: %w", key, err)
	}
	return data, nil
}

// Ping checks MinIO connectivity.
func (s *ArchiveStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
