// Package objectstore stores binary objects such as avatar images and hands
// back public URLs for them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"anggaran/internal/core"
)

// AvatarBucket holds profile pictures.
const AvatarBucket = "avatars"

// Store is the object-store port.
type Store interface {
	// Upload writes data and returns the URL it is publicly served from.
	Upload(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error)
	// Download returns core.ErrNotFound for missing objects.
	Download(ctx context.Context, bucket, name string) ([]byte, error)
}

var ErrInvalidKey = errors.New("invalid object key")

// objectKey joins bucket and name, rejecting anything that could escape the
// bucket.
func objectKey(bucket, name string) (string, error) {
	for _, part := range []string{bucket, name} {
		if part == "" || strings.Contains(part, "..") || strings.HasPrefix(part, "/") || strings.Contains(part, `\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, part)
		}
	}
	return path.Join(bucket, name), nil
}

func notFound(bucket, name string) error {
	return fmt.Errorf("object %s/%s: %w", bucket, name, core.ErrNotFound)
}
