// Package storage keeps uploaded sauce images in a gocloud.dev blob bucket.
package storage

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"

	"piquante/config"
	"piquante/internal/domain/lifecycle"
	"piquante/internal/domain/service"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// BlobImageStore implements service.ImageStore on any gocloud.dev bucket.
type BlobImageStore struct {
	bucket  *blob.Bucket
	baseURL string
	now     func() time.Time
}

var _ service.ImageStore = (*BlobImageStore)(nil)

// New opens the configured bucket and closes it when the app stops.
func New(params Params) (*BlobImageStore, error) {
	bucketURL := "mem://"
	baseURL := "/images"
	if params.Config.Images != nil {
		if params.Config.Images.BucketURL != "" {
			bucketURL = params.Config.Images.BucketURL
		}
		if params.Config.Images.PublicBaseURL != "" {
			baseURL = params.Config.Images.PublicBaseURL
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image bucket %q", bucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing image bucket")

			return bucket.Close()
		},
	})

	return NewBlobImageStore(bucket, baseURL), nil
}

// NewBlobImageStore wraps an already opened bucket.
func NewBlobImageStore(bucket *blob.Bucket, baseURL string) *BlobImageStore {
	return &BlobImageStore{
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// Save streams r into a new object named <unix-millis>-<uuid><ext>.
func (s *BlobImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := s.objectKey(filename)

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, "open image writer")
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		_ = s.bucket.Delete(context.WithoutCancel(ctx), key)

		return "", errors.Wrap(err, "write image")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close image writer")
	}

	return key, nil
}

// Delete removes key, treating a missing object as already deleted.
func (s *BlobImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}

		return errors.Wrapf(err, "delete image %q", key)
	}

	return nil
}

// URL joins the public base URL and key.
func (s *BlobImageStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// Open returns a reader for key, used to serve images over HTTP.
func (s *BlobImageStore) Open(ctx context.Context, key string) (*blob.Reader, error) {
	return s.bucket.NewReader(ctx, key, nil)
}

func (s *BlobImageStore) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 8 || strings.ContainsAny(ext, " /") {
		ext = ""
	}

	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + uuid.NewString() + ext
}
