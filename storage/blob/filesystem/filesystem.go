// Package filesystem stores blobs in a local directory, the default for a
// single-host deployment serving /uploads straight from disk.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/storage/blob"
	storageutil "github.com/soundshelf/soundshelf/storage/util"
)

// StoreImpl stores uploaded blobs in a local directory.
type StoreImpl struct {
	basePath  string
	publicURL string
	pattern   *storageutil.PathPattern
	mu        sync.RWMutex // Protects file operations
}

// NewFilesystemBlobStore creates a new filesystem-based blob store.
func NewFilesystemBlobStore(cfg *config.Blobs) (*StoreImpl, error) {
	if cfg == nil || cfg.Filesystem == nil {
		return nil, fmt.Errorf("filesystem blob config is nil")
	}

	// Ensure base path exists
	if err := os.MkdirAll(cfg.Filesystem.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	pattern := storageutil.DefaultBlobPattern()
	if cfg.PathPattern != "" {
		pattern = storageutil.NewPathPattern(cfg.PathPattern)
	}

	return &StoreImpl{
		basePath:  cfg.Filesystem.Path,
		publicURL: storageutil.NormalizeBaseURL(cfg.PublicBaseUrl),
		pattern:   pattern,
	}, nil
}

// Save writes the blob to disk under a collision-resistant key and returns
// its public ref.
func (fss *StoreImpl) Save(ctx context.Context, originalName string, contentType string, r io.Reader, size int64) (string, error) {
	fss.mu.Lock()
	defer fss.mu.Unlock()

	now := time.Now()
	key, err := blob.GenerateKey(fss.pattern, originalName, contentType, now)
	if err != nil {
		return "", err
	}

	absPath := filepath.Join(fss.basePath, key)

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Key already taken - derive a unique variant
	if _, err := os.Stat(absPath); err == nil {
		key, err = blob.UniqueVariant(fss.pattern, key, now)
		if err != nil {
			return "", fmt.Errorf("failed to generate unique key: %w", err)
		}
		absPath = filepath.Join(fss.basePath, key)

		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create unique directory: %w", err)
		}
	}

	outFile, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, r); err != nil {
		// Attempt to clean up partial file
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	// relPath uses OS-specific separators; refs always use URL separators
	return fss.publicURL + filepath.ToSlash(key), nil
}

// Delete removes a blob from the filesystem. A missing blob is not an error.
func (fss *StoreImpl) Delete(ctx context.Context, ref string) error {
	fss.mu.Lock()
	defer fss.mu.Unlock()

	absPath, err := fss.resolve(ref)
	if err != nil {
		return err
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			// Already gone - deletion is idempotent
			return nil
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// Exists reports whether a blob is present at ref.
func (fss *StoreImpl) Exists(ctx context.Context, ref string) (bool, error) {
	fss.mu.RLock()
	defer fss.mu.RUnlock()

	absPath, err := fss.resolve(ref)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return true, nil
}

// Usage walks the base directory and sums file sizes.
func (fss *StoreImpl) Usage(ctx context.Context) (int64, error) {
	fss.mu.RLock()
	defer fss.mu.RUnlock()

	var total int64
	err := filepath.WalkDir(fss.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure usage: %w", err)
	}

	return total, nil
}

func (fss *StoreImpl) resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, fss.publicURL) {
		return "", fmt.Errorf("ref %q does not match public base %q", ref, fss.publicURL)
	}

	relPath := filepath.FromSlash(strings.TrimPrefix(ref, fss.publicURL))

	return filepath.Join(fss.basePath, relPath), nil
}
