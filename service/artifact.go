package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact is an open stored PDF. The caller must close Reader.
type Artifact struct {
	Reader io.ReadCloser
	Size   int64
}

// ArtifactStore keeps rendered contract PDFs. Put returns the locator that is
// recorded with the contract; Open resolves a locator back to a byte stream
// and returns ErrArtifactNotFound when nothing is stored there.
type ArtifactStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, locator string) (*Artifact, error)
	Delete(ctx context.Context, locator string) error
}

// LocalArtifactStore stores PDFs as files below a directory. Locators are file paths.
type LocalArtifactStore struct {
	dir string
}

func NewLocalArtifactStore(dir string) (*LocalArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalArtifactStore{dir: dir}, nil
}

func (s *LocalArtifactStore) Put(_ context.Context, name string, r io.Reader, _ int64) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	location := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), location); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}
	return location, nil
}

func (s *LocalArtifactStore) Open(_ context.Context, locator string) (*Artifact, error) {
	f, err := os.Open(locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", locator, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat artifact: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory: %w", locator, ErrArtifactNotFound)
	}

	return &Artifact{Reader: f, Size: info.Size()}, nil
}

func (s *LocalArtifactStore) Delete(_ context.Context, locator string) error {
	if err := os.Remove(locator); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
