// Package storage stores uploaded product images.
//
// Two drivers are available:
//   - "local": local filesystem, served back under STORAGE_URL
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disk, err := storage.Connect(ctx)
//	err = disk.Put(ctx, "products/abc.jpg", file, "image/jpeg")
//	url := disk.URL("products/abc.jpg")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when the object does not exist.
var ErrNotFound = errors.New("storage: not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Open returns a reader for path. The caller must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string

	// Driver names the backend ("local" or "s3").
	Driver() string
}
