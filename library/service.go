package library

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/soundshelf/soundshelf/storage/blob"
	"github.com/soundshelf/soundshelf/storage/record"
)

// Service orchestrates the blob and record stores so each operation either
// fully succeeds or fails without leaving partial artifacts behind. The only
// documented exception is Clear, which is best effort on the blob side.
type Service struct {
	Blobs   blob.Store
	Records record.Store

	// MaxFileSize bounds each uploaded file part in bytes. Zero disables
	// the check.
	MaxFileSize int64
}

// FileInput is one uploaded part. The reader must be seekable because audio
// uploads are scanned for tags before being written out.
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.ReadSeeker
}

// UploadInput carries everything needed to create a record. Both files are
// required.
type UploadInput struct {
	Title       string
	Description string
	Category    string
	Image       *FileInput
	Audio       *FileInput
}

// UpdateInput carries a partial update. Nil fields are untouched; non-nil
// files replace the prior blobs.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Image       *FileInput
	Audio       *FileInput
}

// ClearSummary reports the outcome of a bulk wipe.
type ClearSummary struct {
	Records      int64 `json:"records"`
	BlobsDeleted int   `json:"blobsDeleted"`
	BlobsFailed  int   `json:"blobsFailed"`
}

// Upload validates the input, writes both blobs, and creates the record.
// Nothing is written until validation passes. If the audio write or the
// record insert fails, blobs written earlier in the same call are deleted
// before the error is returned.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*record.Record, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	category, err := resolveCategory(in.Category)
	if err != nil {
		return nil, err
	}
	if err := s.validateImage("image", in.Image); err != nil {
		return nil, err
	}
	if err := s.validateAudio("audio", in.Audio); err != nil {
		return nil, err
	}

	artist, album := readAudioTags(in.Audio.Reader)

	imageRef, err := s.Blobs.Save(ctx, in.Image.Name, in.Image.ContentType, in.Image.Reader, in.Image.Size)
	if err != nil {
		return nil, &StorageError{Op: "save image blob", Err: err}
	}

	audioRef, err := s.Blobs.Save(ctx, in.Audio.Name, in.Audio.ContentType, in.Audio.Reader, in.Audio.Size)
	if err != nil {
		s.compensate(ctx, "upload", imageRef)
		return nil, &StorageError{Op: "save audio blob", Err: err}
	}

	rec, err := s.Records.Create(ctx, record.Draft{
		Title:       in.Title,
		Description: in.Description,
		Category:    category,
		ImageRef:    imageRef,
		AudioRef:    audioRef,
		Artist:      artist,
		Album:       album,
	})
	if err != nil {
		s.compensate(ctx, "upload", imageRef, audioRef)
		return nil, &StorageError{Op: "create record", Err: err}
	}

	return rec, nil
}

// Update applies a partial update. Replacement blobs are written before the
// row is touched; the old blobs are removed only once the row update has
// succeeded, so a failure leaves the record pointing at its original files.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*record.Record, error) {
	existing, err := s.Records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "fetch record", Err: err}
	}

	patch := record.Patch{
		Title:       in.Title,
		Description: in.Description,
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Category != nil {
		category, err := resolveCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		patch.Category = &category
	}
	if in.Image != nil {
		if err := s.validateImage("image", in.Image); err != nil {
			return nil, err
		}
	}
	if in.Audio != nil {
		if err := s.validateAudio("audio", in.Audio); err != nil {
			return nil, err
		}
	}

	var newRefs []string
	var oldRefs []string

	if in.Image != nil {
		ref, err := s.Blobs.Save(ctx, in.Image.Name, in.Image.ContentType, in.Image.Reader, in.Image.Size)
		if err != nil {
			return nil, &StorageError{Op: "save image blob", Err: err}
		}
		patch.ImageRef = &ref
		newRefs = append(newRefs, ref)
		oldRefs = append(oldRefs, existing.ImageRef)
	}

	if in.Audio != nil {
		artist, album := readAudioTags(in.Audio.Reader)
		ref, err := s.Blobs.Save(ctx, in.Audio.Name, in.Audio.ContentType, in.Audio.Reader, in.Audio.Size)
		if err != nil {
			s.compensate(ctx, "update", newRefs...)
			return nil, &StorageError{Op: "save audio blob", Err: err}
		}
		patch.AudioRef = &ref
		patch.Artist = &artist
		patch.Album = &album
		newRefs = append(newRefs, ref)
		oldRefs = append(oldRefs, existing.AudioRef)
	}

	updated, err := s.Records.Update(ctx, id, patch)
	if err != nil {
		s.compensate(ctx, "update", newRefs...)
		if errors.Is(err, record.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "update record", Err: err}
	}

	// Replaced blobs are unreferenced now, drop them.
	for _, ref := range oldRefs {
		if err := s.Blobs.Delete(ctx, ref); err != nil {
			log.Printf("failed to delete replaced blob %q: %v", ref, err)
		}
	}

	return updated, nil
}

// Delete removes a record and both of its blobs, blobs first. A blob delete
// failure aborts before the row is touched so the record never dangles.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return &StorageError{Op: "fetch record", Err: err}
	}

	for _, ref := range []string{rec.ImageRef, rec.AudioRef} {
		if err := s.Blobs.Delete(ctx, ref); err != nil {
			return &StorageError{Op: "delete blob", Err: err}
		}
	}

	if err := s.Records.Delete(ctx, id); err != nil && !errors.Is(err, record.ErrNotFound) {
		return &StorageError{Op: "delete record", Err: err}
	}

	return nil
}

// ToggleLike flips the like flag, stamping likedAt on like and clearing it
// on unlike.
func (s *Service) ToggleLike(ctx context.Context, id string) (*record.Record, error) {
	rec, err := s.Records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "fetch record", Err: err}
	}

	liked := !rec.IsLiked
	patch := record.Patch{IsLiked: &liked}
	if liked {
		now := time.Now().UTC()
		patch.LikedAt = &now
	} else {
		patch.ClearLikedAt = true
	}

	updated, err := s.Records.Update(ctx, id, patch)
	if err != nil {
		return nil, &StorageError{Op: "update record", Err: err}
	}

	return updated, nil
}

// Clear wipes every record and its blobs. It refuses to run without the
// confirmation flag. Blob deletes are best effort: failures are logged and
// counted, and the rows are removed regardless so the library ends empty.
func (s *Service) Clear(ctx context.Context, confirmed bool) (*ClearSummary, error) {
	if !confirmed {
		return nil, &ValidationError{Field: "confirmed", Message: "clearing all data requires confirmation"}
	}

	records, err := s.Records.List(ctx, record.Filter{}, record.SortRecent)
	if err != nil {
		return nil, &StorageError{Op: "list records", Err: err}
	}

	summary := &ClearSummary{}
	for _, rec := range records {
		for _, ref := range []string{rec.ImageRef, rec.AudioRef} {
			if err := s.Blobs.Delete(ctx, ref); err != nil {
				log.Printf("failed to delete blob %q during clear: %v", ref, err)
				summary.BlobsFailed++
				continue
			}
			summary.BlobsDeleted++
		}
	}

	count, err := s.Records.DeleteAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "delete all records", Err: err}
	}
	summary.Records = count

	return summary, nil
}

func (s *Service) compensate(ctx context.Context, op string, refs ...string) {
	for _, ref := range refs {
		if err := s.Blobs.Delete(ctx, ref); err != nil {
			log.Printf("failed to clean up blob %q after %s failure: %v", ref, op, err)
		}
	}
}
