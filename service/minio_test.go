package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/minio/minio-go/v7"
)

func TestNewMinioArtifactStore(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "contracts",
		Prefix:    "contracts",
	}

	store, err := NewMinioArtifactStore(cfg)
	// creating the client does not connect yet
	if err != nil {
		t.Fatalf("NewMinioArtifactStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestMinioArtifactStoreObjectName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		artifact string
		expected string
	}{
		{"with prefix", "contracts", "C-1.pdf", "contracts/C-1.pdf"},
		{"nested prefix", "prod/contracts/", "C-2.pdf", "prod/contracts/C-2.pdf"},
		{"no prefix", "", "C-3.pdf", "C-3.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MinioArtifactStore{
				bucket: "contracts",
				config: &config.MinioConfig{Prefix: tt.prefix},
			}
			if got := store.ObjectName(tt.artifact); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestIsMinioNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"no such bucket", minio.ErrorResponse{Code: "NoSuchBucket"}, true},
		{"plain 404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false},
		{"network error", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMinioNotFound(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
