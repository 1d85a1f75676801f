package library

import (
	"io"

	"github.com/dhowden/tag"
)

// readAudioTags pulls artist and album metadata out of an uploaded audio
// file. Tag extraction is best effort: unreadable or missing tags yield
// empty strings, never an error. The reader is rewound afterward so the
// blob write sees the whole file.
func readAudioTags(r io.ReadSeeker) (artist string, album string) {
	defer func() {
		_, _ = r.Seek(0, io.SeekStart)
	}()

	m, err := tag.ReadFrom(r)
	if err != nil {
		return "", ""
	}

	return m.Artist(), m.Album()
}
