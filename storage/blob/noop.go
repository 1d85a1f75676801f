package blob

import (
	"context"
	"io"
	"log"
)

// NoopStore discards uploads and satisfies every call. Useful when running
// the API without any real storage attached.
type NoopStore struct{}

func (ns *NoopStore) Save(ctx context.Context, originalName string, contentType string, r io.Reader, size int64) (string, error) {
	log.Println("Received no-op blob save request - dumping request information")
	log.Printf("Original name: %v", originalName)
	log.Printf("Content type: %v", contentType)
	log.Printf("Size: %v", size)

	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", err
	}
	log.Printf("Discarded %d bytes", n)

	return "/noop/" + originalName, nil
}

func (ns *NoopStore) Delete(ctx context.Context, ref string) error {
	log.Println("Received no-op blob delete request - dumping request information")
	log.Printf("Ref: %v", ref)
	return nil
}

func (ns *NoopStore) Exists(ctx context.Context, ref string) (bool, error) {
	return false, nil
}

func (ns *NoopStore) Usage(ctx context.Context) (int64, error) {
	return 0, nil
}
