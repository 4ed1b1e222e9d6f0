package service

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrMediaNotFound is returned when an object key does not exist.
var ErrMediaNotFound = errors.New("media object not found")

// MediaStorage is the object store holding shelter media and avatars.
type MediaStorage interface {
	// Put uploads an object under key.
	Put(ctx context.Context, key, contentType string, body io.Reader) error

	// Delete removes one object. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteBatch removes every key, stopping at the first failure.
	DeleteBatch(ctx context.Context, keys []string) error

	// SignedURL returns a presigned GET URL valid for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
