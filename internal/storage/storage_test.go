package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir)

	location, err := store.Upload(context.Background(), "run-1/businesses.json", []byte(`[]`), "application/json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location != filepath.Join(dir, "run-1", "businesses.json") {
		t.Fatalf("unexpected location %s", location)
	}
	data, err := store.Download(context.Background(), "run-1/businesses.json")
	if err != nil || string(data) != "[]" {
		t.Fatalf("unexpected download %q %v", data, err)
	}
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	for name, object := range map[string]string{
		"parent": "../secrets.txt",
		"empty":  "",
		"nested": "run/../../x",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Upload(context.Background(), object, nil, ""); !errors.Is(err, ErrInvalidObjectName) {
				t.Fatalf("expected ErrInvalidObjectName, got %v", err)
			}
		})
	}
}

func TestNewGCSStorageRequiresBucket(t *testing.T) {
	if _, err := NewGCSStorage(context.Background(), GCSConfig{}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
