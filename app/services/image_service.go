package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/storage"
)

var (
	ErrNotImage      = errors.New("image: only image files are accepted")
	ErrImageTooLarge = errors.New("image: file is too large")
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores product images on the configured disk.
type ImageService struct {
	disk     storage.Disk
	maxBytes int64
}

func NewImageService(disk storage.Disk, maxBytes int64) *ImageService {
	return &ImageService{disk: disk, maxBytes: maxBytes}
}

// Upload stores fh under products/ and returns its public URL. The content
// type is sniffed from the bytes, not taken from the browser.
func (s *ImageService) Upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("image: open upload: %w", err)
	}
	defer f.Close()

	return s.Store(ctx, f)
}

// Store sniffs and writes r. It is Upload without the multipart wrapper.
// The body is buffered so both disks receive a seekable, sized reader.
func (s *ImageService) Store(ctx context.Context, r io.Reader) (string, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("image: read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return "", ErrNotImage
	}

	key := "products/" + uuid.NewString() + ext
	if err := s.disk.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("image: store: %w", err)
	}
	return s.disk.URL(key), nil
}
