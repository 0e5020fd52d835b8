package service

import (
	"context"
	"io"
)

// ImageStore keeps uploaded sauce images.
type ImageStore interface {
	// Save writes the image under a freshly generated key derived from filename.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (key string, err error)

	// Delete removes the image. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address clients use to fetch key.
	URL(key string) string
}
