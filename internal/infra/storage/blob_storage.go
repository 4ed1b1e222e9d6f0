// Package storage implements service.MediaStorage on top of a gocloud.dev bucket.
package storage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"refugis/config"
	"refugis/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const defaultBucketURL = "mem://"

// BlobStorage wraps a bucket opened from a URL such as gs://bucket, file:///dir or mem://.
type BlobStorage struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewBlobStorage wraps an already opened bucket.
func NewBlobStorage(bucket *blob.Bucket, logger *slog.Logger) *BlobStorage {
	return &BlobStorage{bucket: bucket, logger: logger}
}

// OpenBlobStorage opens the bucket named by bucketURL.
func OpenBlobStorage(ctx context.Context, bucketURL string, logger *slog.Logger) (*BlobStorage, error) {
	if bucketURL == "" {
		bucketURL = defaultBucketURL
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", bucketURL)
	}

	return NewBlobStorage(bucket, logger), nil
}

// NewMediaStorage opens the configured bucket and closes it when the app stops.
func NewMediaStorage(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (service.MediaStorage, error) {
	bucketURL := ""
	if cfg.Storage != nil {
		bucketURL = cfg.Storage.BucketURL
	}

	storage, err := OpenBlobStorage(context.Background(), bucketURL, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return storage.Close()
		},
	})

	logger.Info("Media storage initialized", slog.String("bucket", bucketURL))

	return storage, nil
}

// Put uploads body under key.
func (s *BlobStorage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "failed to open writer for %s", key)
	}

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()

		return errors.Wrapf(err, "failed to upload %s", key)
	}

	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "failed to finish upload of %s", key)
	}

	return nil
}

// Delete removes key; a missing object counts as deleted.
func (s *BlobStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err == nil || gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}

	return errors.Wrapf(err, "failed to delete %s", key)
}

// DeleteBatch removes keys in order and stops at the first failure.
func (s *BlobStorage) DeleteBatch(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}

	if len(keys) > 0 {
		s.logger.Debug("Deleted media objects", slog.Int("count", len(keys)))
	}

	return nil
}

// SignedURL returns a presigned GET URL. Buckets without signing support return an error.
func (s *BlobStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat %s", key)
	}
	if !exists {
		return "", service.ErrMediaNotFound
	}

	url, err := s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{Expiry: ttl, Method: "GET"})
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign url for %s", key)
	}

	return url, nil
}

// Close releases the bucket.
func (s *BlobStorage) Close() error {
	return s.bucket.Close()
}
