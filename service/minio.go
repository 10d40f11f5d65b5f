package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioArtifactStore keeps PDFs in a MinIO/S3 bucket. Locators are object names.
type MinioArtifactStore struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioArtifactStore(cfg *config.MinioConfig) (*MinioArtifactStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArtifactStore{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioArtifactStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ObjectName maps an artifact name to its key inside the bucket
func (s *MinioArtifactStore) ObjectName(name string) string {
	return path.Join(s.config.Prefix, name)
}

func (s *MinioArtifactStore) Put(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	objectName := s.ObjectName(name)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return objectName, nil
}

// Open stats the object first so a missing PDF is reported before any byte is streamed.
func (s *MinioArtifactStore) Open(ctx context.Context, locator string) (*Artifact, error) {
	info, err := s.client.StatObject(ctx, s.bucket, locator, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%s: %w", locator, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, locator, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return &Artifact{Reader: obj, Size: info.Size}, nil
}

func (s *MinioArtifactStore) Delete(ctx context.Context, locator string) error {
	err := s.client.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func isMinioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NoSuchObject":
		return true
	}
	return resp.StatusCode == http.StatusNotFound
}
