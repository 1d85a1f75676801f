package state

import (
	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/storage/blob"
	"github.com/soundshelf/soundshelf/storage/record"
)

// SoundshelfState wires the configured stores and the workflow service
// together for the handler layer.
type SoundshelfState struct {
	Cfg     *config.Config
	Blobs   blob.Store
	Records record.Store
	Library *library.Service
}
