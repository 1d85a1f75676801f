package record

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRecordStore keeps everything in process memory. It backs the
// "memory" strategy for demo deployments with no database and doubles as a
// fixture store in tests.
type MemoryRecordStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	users    map[string]User // keyed by email
	settings *Settings
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[string]Record),
		users:   make(map[string]User),
	}
}

func (ms *MemoryRecordStore) Create(ctx context.Context, draft Draft) (*Record, error) {
	if draft.Title == "" || draft.Category == "" || draft.ImageRef == "" || draft.AudioRef == "" {
		return nil, ErrInvalidDraft
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec := Record{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		ImageRef:    draft.ImageRef,
		AudioRef:    draft.AudioRef,
		Artist:      draft.Artist,
		Album:       draft.Album,
		CreatedAt:   time.Now().UTC(),
	}

	ms.records[rec.ID] = rec
	return &rec, nil
}

func (ms *MemoryRecordStore) GetByID(ctx context.Context, id string) (*Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	rec, ok := ms.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &rec, nil
}

func (ms *MemoryRecordStore) List(ctx context.Context, filter Filter, s Sort) ([]Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Record
	for _, rec := range ms.records {
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		out = append(out, rec)
	}

	sortRecords(out, s)
	return out, nil
}

func (ms *MemoryRecordStore) ListLiked(ctx context.Context) ([]Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Record
	for _, rec := range ms.records {
		if rec.IsLiked {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].LikedAt, out[j].LikedAt
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		default:
			return li.After(*lj)
		}
	})

	return out, nil
}

func (ms *MemoryRecordStore) Search(ctx context.Context, query string, field string, limit int) ([]Record, error) {
	if query == "" {
		return nil, nil
	}

	needle := strings.ToLower(query)
	codes := matchingCategoryCodes(query)

	matches := func(rec Record) bool {
		switch field {
		case SearchTitle:
			return strings.Contains(strings.ToLower(rec.Title), needle)
		case SearchDescription:
			return strings.Contains(strings.ToLower(rec.Description), needle)
		case SearchCategory:
			return slices.Contains(codes, rec.Category)
		default:
			return strings.Contains(strings.ToLower(rec.Title), needle) ||
				strings.Contains(strings.ToLower(rec.Description), needle) ||
				slices.Contains(codes, rec.Category)
		}
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Record
	for _, rec := range ms.records {
		if matches(rec) {
			out = append(out, rec)
		}
	}

	sortRecords(out, SortRecent)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (ms *MemoryRecordStore) Update(ctx context.Context, id string, patch Patch) (*Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, ok := ms.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyPatch(&rec, patch)
	ms.records[id] = rec

	return &rec, nil
}

func (ms *MemoryRecordStore) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.records[id]; !ok {
		return ErrNotFound
	}

	delete(ms.records, id)
	return nil
}

func (ms *MemoryRecordStore) DeleteAll(ctx context.Context) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	count := int64(len(ms.records))
	ms.records = make(map[string]Record)

	return count, nil
}

func (ms *MemoryRecordStore) MostLikedCategory(ctx context.Context) (string, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range ms.records {
		if rec.IsLiked {
			counts[rec.Category]++
		}
	}

	var best string
	var bestCount int
	for code, count := range counts {
		// Lexicographic tie-break, matching the SQL store
		if count > bestCount || (count == bestCount && (best == "" || code < best)) {
			best, bestCount = code, count
		}
	}

	return best, bestCount, nil
}

func (ms *MemoryRecordStore) Categories(ctx context.Context) ([]Category, error) {
	out := make([]Category, len(SeedCategories))
	copy(out, SeedCategories)
	return out, nil
}

func (ms *MemoryRecordStore) GetSettings(ctx context.Context) (*Settings, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.settings == nil {
		s := DefaultSettings(defaultUserID)
		s.LastUpdated = time.Now().UTC()
		ms.settings = s
	}

	s := *ms.settings
	return &s, nil
}

func (ms *MemoryRecordStore) UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	if _, err := ms.GetSettings(ctx); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	applySettingsPatch(ms.settings, patch)
	ms.settings.LastUpdated = time.Now().UTC()

	s := *ms.settings
	return &s, nil
}

func (ms *MemoryRecordStore) CreateUser(ctx context.Context, name string, email string, passwordHash string) (*User, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.users[email]; ok {
		return nil, ErrEmailTaken
	}

	u := User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	ms.users[email] = u
	return &u, nil
}

func (ms *MemoryRecordStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	u, ok := ms.users[email]
	if !ok {
		return nil, ErrNotFound
	}

	return &u, nil
}

func sortRecords(recs []Record, s Sort) {
	switch s {
	case SortAlphabetical:
		sort.Slice(recs, func(i, j int) bool { return recs[i].Title < recs[j].Title })
	case SortCategory:
		sort.Slice(recs, func(i, j int) bool { return recs[i].Category < recs[j].Category })
	default:
		sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	}
}
