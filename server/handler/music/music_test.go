package music

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saves   int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (ms *memBlobStore) Save(ctx context.Context, originalName string, contentType string, r io.Reader, size int64) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	ms.saves++
	ref := fmt.Sprintf("/uploads/%d-%s", ms.saves, originalName)
	ms.objects[ref] = data
	return ref, nil
}

func (ms *memBlobStore) Delete(ctx context.Context, ref string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.objects, ref)
	return nil
}

func (ms *memBlobStore) Exists(ctx context.Context, ref string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	_, ok := ms.objects[ref]
	return ok, nil
}

func (ms *memBlobStore) Usage(ctx context.Context) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var total int64
	for _, data := range ms.objects {
		total += int64(len(data))
	}
	return total, nil
}

func newTestState() *state.SoundshelfState {
	blobs := newMemBlobStore()
	records := record.NewMemoryRecordStore()

	return &state.SoundshelfState{
		Cfg: &config.Config{
			Server: config.Server{
				Limits: config.ServerLimits{MaxMultipartMem: 1 << 20, MaxFileSize: 1 << 20},
			},
		},
		Blobs:   blobs,
		Records: records,
		Library: &library.Service{Blobs: blobs, Records: records, MaxFileSize: 1 << 20},
	}
}

func uploadRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for key, name := range files {
		fw, err := w.CreateFormFile(key, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(name + " bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	w.Close()

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func createRecord(t *testing.T, st *state.SoundshelfState, title, category string) *record.Record {
	t.Helper()

	req := uploadRequest(t, http.MethodPost, "/api/music",
		map[string]string{"title": title, "category": category},
		map[string]string{"image": "cover.jpg", "audio": "track.mp3"})
	rr := httptest.NewRecorder()

	HandleCreate(st)(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rr.Code, rr.Body.String())
	}

	var rec record.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode created record: %v", err)
	}
	return &rec
}

func TestHandleCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		st := newTestState()
		rec := createRecord(t, st, "Night Drive", "techno")

		if rec.ID == "" || rec.Category != "techno" {
			t.Fatalf("unexpected record: %+v", rec)
		}
		if ok, _ := st.Blobs.Exists(context.Background(), rec.ImageRef); !ok {
			t.Fatalf("image blob missing")
		}
	})

	t.Run("missing audio part", func(t *testing.T) {
		st := newTestState()
		req := uploadRequest(t, http.MethodPost, "/api/music",
			map[string]string{"title": "No Audio"},
			map[string]string{"image": "cover.jpg"})
		rr := httptest.NewRecorder()

		HandleCreate(st)(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("wrong content type", func(t *testing.T) {
		st := newTestState()
		req := httptest.NewRequest(http.MethodPost, "/api/music", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		HandleCreate(st)(rr, req)
		if rr.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d", rr.Code)
		}
	})
}

func TestHandleGet(t *testing.T) {
	st := newTestState()
	rec := createRecord(t, st, "Song", "pop")

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/music/"+rec.ID, nil)
		req.SetPathValue("id", rec.ID)
		rr := httptest.NewRecorder()

		HandleGet(st)(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/music/nope", nil)
		req.SetPathValue("id", "nope")
		rr := httptest.NewRecorder()

		HandleGet(st)(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestHandleList(t *testing.T) {
	st := newTestState()
	createRecord(t, st, "Alpha", "pop")
	createRecord(t, st, "Beta", "techno")

	t.Run("all", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleList(st)(rr, httptest.NewRequest(http.MethodGet, "/api/music", nil))

		var records []record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleList(st)(rr, httptest.NewRequest(http.MethodGet, "/api/music?category=pop", nil))

		var records []record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(records) != 1 || records[0].Title != "Alpha" {
			t.Fatalf("unexpected result: %+v", records)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleList(st)(rr, httptest.NewRequest(http.MethodGet, "/api/music?category=polka", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("bad sort", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleList(st)(rr, httptest.NewRequest(http.MethodGet, "/api/music?sort=upside-down", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("grouped", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleList(st)(rr, httptest.NewRequest(http.MethodGet, "/api/music?grouped=true", nil))

		var groups []CategoryGroup
		if err := json.Unmarshal(rr.Body.Bytes(), &groups); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		// Seed order puts techno before pop
		if groups[0].Category != "techno" || groups[1].Category != "pop" {
			t.Fatalf("unexpected group order: %+v", groups)
		}
	})
}

func TestHandleUpdate(t *testing.T) {
	st := newTestState()
	rec := createRecord(t, st, "Original", "pop")

	t.Run("title only", func(t *testing.T) {
		req := uploadRequest(t, http.MethodPut, "/api/music/"+rec.ID,
			map[string]string{"title": "Renamed"}, nil)
		req.SetPathValue("id", rec.ID)
		rr := httptest.NewRecorder()

		HandleUpdate(st)(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var updated record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if updated.Title != "Renamed" || updated.Category != "pop" || updated.ImageRef != rec.ImageRef {
			t.Fatalf("unexpected update result: %+v", updated)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		req := uploadRequest(t, http.MethodPut, "/api/music/nope",
			map[string]string{"title": "x"}, nil)
		req.SetPathValue("id", "nope")
		rr := httptest.NewRecorder()

		HandleUpdate(st)(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestHandleDelete(t *testing.T) {
	st := newTestState()
	rec := createRecord(t, st, "Doomed", "pop")

	req := httptest.NewRequest(http.MethodDelete, "/api/music/"+rec.ID, nil)
	req.SetPathValue("id", rec.ID)
	rr := httptest.NewRecorder()

	HandleDelete(st)(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	if _, err := st.Records.GetByID(context.Background(), rec.ID); !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}
	if ok, _ := st.Blobs.Exists(context.Background(), rec.AudioRef); ok {
		t.Fatalf("audio blob still present")
	}
}

func TestHandleToggleLike(t *testing.T) {
	st := newTestState()
	rec := createRecord(t, st, "Likeable", "pop")

	toggle := func() *record.Record {
		req := httptest.NewRequest(http.MethodPost, "/api/music/"+rec.ID+"/like", nil)
		req.SetPathValue("id", rec.ID)
		rr := httptest.NewRecorder()

		HandleToggleLike(st)(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var out record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return &out
	}

	if liked := toggle(); !liked.IsLiked || liked.LikedAt == nil {
		t.Fatalf("expected liked, got %+v", liked)
	}
	if unliked := toggle(); unliked.IsLiked || unliked.LikedAt != nil {
		t.Fatalf("expected unliked, got %+v", unliked)
	}
}

func TestHandleSearch(t *testing.T) {
	st := newTestState()
	createRecord(t, st, "Night Drive", "techno")
	createRecord(t, st, "Beach Day", "beach")

	t.Run("title match", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleSearch(st)(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=night&filter=title", nil))

		var records []record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(records) != 1 || records[0].Title != "Night Drive" {
			t.Fatalf("unexpected result: %+v", records)
		}
	})

	t.Run("empty query yields empty list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleSearch(st)(rr, httptest.NewRequest(http.MethodGet, "/api/search", nil))

		if rr.Code != http.StatusOK || rr.Body.String() == "null\n" {
			t.Fatalf("expected empty array, got %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("bad filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleSearch(st)(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=x&filter=album", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestHandleCategories(t *testing.T) {
	st := newTestState()

	rr := httptest.NewRecorder()
	HandleListCategories(st)(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	var categories []record.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(categories) != len(record.SeedCategories) {
		t.Fatalf("expected %d categories, got %d", len(record.SeedCategories), len(categories))
	}
}

func TestHandleCategoryMusic(t *testing.T) {
	st := newTestState()
	createRecord(t, st, "Workout Jam", "workout")

	t.Run("known category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/workout/music", nil)
		req.SetPathValue("id", "workout")
		rr := httptest.NewRecorder()

		HandleCategoryMusic(st)(rr, req)

		var records []record.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/polka/music", nil)
		req.SetPathValue("id", "polka")
		rr := httptest.NewRecorder()

		HandleCategoryMusic(st)(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestHandleLikedStats(t *testing.T) {
	st := newTestState()
	rec := createRecord(t, st, "Fav", "techno")
	createRecord(t, st, "Meh", "pop")

	req := httptest.NewRequest(http.MethodPost, "/api/music/"+rec.ID+"/like", nil)
	req.SetPathValue("id", rec.ID)
	HandleToggleLike(st)(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	HandleLikedStats(st)(rr, httptest.NewRequest(http.MethodGet, "/api/liked/stats", nil))

	var stats LikedStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if stats.TotalLiked != 1 || stats.RecentlyLiked != "Fav" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.MostLikedCategory == nil || stats.MostLikedCategory.ID != "techno" || stats.MostLikedCategory.Count != 1 {
		t.Fatalf("unexpected most liked category: %+v", stats.MostLikedCategory)
	}
}
