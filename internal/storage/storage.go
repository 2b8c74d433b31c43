package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidObjectName is returned for names that escape the store root.
var ErrInvalidObjectName = errors.New("invalid object name")

// StorageService stores generated artifacts (JSON datasets, SQL scripts).
type StorageService interface {
	// Upload stores content under objectName and returns its location
	Upload(ctx context.Context, objectName string, content []byte, contentType string) (string, error)

	// Download reads an object back
	Download(ctx context.Context, objectName string) ([]byte, error)
}

// LocalStorage keeps artifacts under a directory on disk.
type LocalStorage struct {
	root string
}

// NewLocalStorage returns a store rooted at dir.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{root: dir}
}

func (l *LocalStorage) Upload(_ context.Context, objectName string, content []byte, _ string) (string, error) {
	path, err := l.path(objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", objectName, err)
	}
	return path, nil
}

func (l *LocalStorage) Download(_ context.Context, objectName string) ([]byte, error) {
	path, err := l.path(objectName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", objectName, err)
	}
	return data, nil
}

func (l *LocalStorage) path(objectName string) (string, error) {
	clean := filepath.Clean("/" + objectName)
	if objectName == "" || strings.Contains(objectName, "..") || clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectName, objectName)
	}
	return filepath.Join(l.root, clean), nil
}

var _ StorageService = (*LocalStorage)(nil)
