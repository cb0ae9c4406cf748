package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage provides an abstraction over blob storage backends.
type FileStorage interface {
	Save(ctx context.Context, key string, reader io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns a direct download link, or "" when the blob has to be
	// streamed through Open.
	URL(ctx context.Context, key string) (string, error)
}

// validateKey rejects storage keys containing path traversal segments.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

// LocalFileStorage stores blobs on the local filesystem.
type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) *LocalFileStorage {
	_ = os.MkdirAll(basePath, 0755)
	return &LocalFileStorage{basePath: basePath}
}

// containedPath resolves key under basePath and fails if the result escapes it.
func (s *LocalFileStorage) containedPath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absFull, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("failed to resolve full path: %w", err)
	}
	if !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return absFull, nil
}

func (s *LocalFileStorage) Save(ctx context.Context, key string, reader io.Reader, size int64) error {
	fullPath, err := s.containedPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalFileStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.containedPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete is idempotent.
func (s *LocalFileStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.containedPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL is always empty for local storage; blobs are streamed by the API.
func (s *LocalFileStorage) URL(ctx context.Context, key string) (string, error) {
	if _, err := s.containedPath(key); err != nil {
		return "", err
	}
	return "", nil
}
