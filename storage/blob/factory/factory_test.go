package factory

import (
	"context"
	"io"
	"testing"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/storage/blob"
)

type fakeBlobStore struct{}

func (fakeBlobStore) Save(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", nil
}
func (fakeBlobStore) Delete(context.Context, string) error         { return nil }
func (fakeBlobStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (fakeBlobStore) Usage(context.Context) (int64, error)         { return 0, nil }

func TestRegisterAndGetBlobFactory(t *testing.T) {
	Register("fake-blob", func(cfg *config.Blobs) (blob.Store, error) {
		return fakeBlobStore{}, nil
	})

	factory, ok := Get("fake-blob")
	if !ok {
		t.Fatalf("expected blob factory to be registered")
	}

	store, err := factory(&config.Blobs{})
	if err != nil {
		t.Fatalf("factory returned error: %v", err)
	}
	if _, ok := store.(fakeBlobStore); !ok {
		t.Fatalf("unexpected store type: %T", store)
	}
}

func TestCreateUnknownStrategy(t *testing.T) {
	cfg := &config.Blobs{Strategy: "missing"}
	if _, err := Create(cfg); err == nil {
		t.Fatalf("expected error for unknown blob strategy")
	}
}

func TestCreateNoop(t *testing.T) {
	store, err := Create(&config.Blobs{Strategy: "noop"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, ok := store.(*blob.NoopStore); !ok {
		t.Fatalf("unexpected store type: %T", store)
	}
}
