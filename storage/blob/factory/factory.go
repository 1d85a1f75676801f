package factory

import (
	"fmt"
	"sync"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/storage/blob"
	"github.com/soundshelf/soundshelf/storage/blob/filesystem"
	"github.com/soundshelf/soundshelf/storage/blob/s3"
)

// Factory builds a blob store for the provided blobs config.
type Factory func(*config.Blobs) (blob.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces a blob store factory for the given strategy name.
func Register(strategy string, factory Factory) {
	mu.Lock()
	registry[strategy] = factory
	mu.Unlock()
}

// Get retrieves a factory for the given strategy.
func Get(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[strategy]
	mu.RUnlock()
	return f, ok
}

// Create builds a blob store using the registered factory for the configured strategy.
func Create(cfg *config.Blobs) (blob.Store, error) {
	if f, ok := Get(cfg.Strategy); ok {
		return f(cfg)
	}

	return nil, fmt.Errorf("unknown blob strategy %q", cfg.Strategy)
}

func init() {
	Register("noop", func(cfg *config.Blobs) (blob.Store, error) {
		return &blob.NoopStore{}, nil
	})
	Register("s3", func(cfg *config.Blobs) (blob.Store, error) {
		return s3.NewS3BlobStore(cfg)
	})
	Register("filesystem", func(cfg *config.Blobs) (blob.Store, error) {
		return filesystem.NewFilesystemBlobStore(cfg)
	})
}
