package blob

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	storageutil "github.com/soundshelf/soundshelf/storage/util"
)

// Store is the interface for durable storage of binary artifacts (cover
// images and audio tracks). Refs returned by Save are web-servable paths
// under the store's public base and are the only handle callers hold.
type Store interface {
	// Save writes r under a generated collision-resistant key and returns the
	// stable ref usable for later retrieval and deletion.
	Save(ctx context.Context, originalName string, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the blob at ref. Deleting a missing blob is a no-op.
	Delete(ctx context.Context, ref string) error
	// Exists reports whether a blob is present at ref.
	Exists(ctx context.Context, ref string) (bool, error)
	// Usage returns the total bytes currently held by the store.
	Usage(ctx context.Context) (int64, error)
}

// GenerateKey derives a storage key for an uploaded file: the slugified
// original base name (or a uuid when it slugs to nothing) run through the
// configured path pattern with the write-time timestamp and the original
// extension. The extension falls back to one registered for the content type.
func GenerateKey(pattern *storageutil.PathPattern, originalName string, contentType string, now time.Time) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" && contentType != "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	base := slug.Make(strings.TrimSuffix(filepath.Base(originalName), ext))
	if base == "" {
		base = uuid.New().String()
	}

	key, err := pattern.Generate(base, now, ext)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	return key, nil
}

// UniqueVariant derives an alternate key for the same upload when the first
// choice collides, by appending a uuid fragment to the base name.
func UniqueVariant(pattern *storageutil.PathPattern, key string, now time.Time) (string, error) {
	ext := filepath.Ext(key)
	base := strings.TrimSuffix(filepath.Base(key), ext)
	base = fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])

	return pattern.Generate(base, now, ext)
}
