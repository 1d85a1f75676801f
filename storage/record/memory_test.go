package record

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemoryStore(t *testing.T, drafts ...Draft) *MemoryRecordStore {
	t.Helper()

	store := NewMemoryRecordStore()
	for _, d := range drafts {
		if _, err := store.Create(context.Background(), d); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	return store
}

func draftFor(title, category string) Draft {
	return Draft{
		Title:    title,
		Category: category,
		ImageRef: "/uploads/" + title + ".jpg",
		AudioRef: "/uploads/" + title + ".mp3",
	}
}

func TestMemoryRecordStore_CreateAndGet(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	rec, err := store.Create(ctx, draftFor("Morning Run", "workout"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and createdAt, got %+v", rec)
	}

	fetched, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if fetched.Title != "Morning Run" {
		t.Fatalf("title = %q", fetched.Title)
	}

	// Mutating the returned record must not leak into the store
	fetched.Title = "changed"
	again, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.Title != "Morning Run" {
		t.Fatalf("stored record mutated: %q", again.Title)
	}
}

func TestMemoryRecordStore_Create_RejectsIncompleteDraft(t *testing.T) {
	store := NewMemoryRecordStore()

	if _, err := store.Create(context.Background(), Draft{Title: "no files"}); !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}
}

func TestMemoryRecordStore_GetByID_NotFound(t *testing.T) {
	store := NewMemoryRecordStore()

	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRecordStore_List(t *testing.T) {
	store := seedMemoryStore(t,
		draftFor("Zebra", "pop"),
		draftFor("Alpha", "techno"),
		draftFor("Middle", "pop"),
	)
	ctx := context.Background()

	t.Run("filter by category", func(t *testing.T) {
		out, err := store.List(ctx, Filter{Category: "pop"}, SortRecent)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("len = %d, want 2", len(out))
		}
		for _, r := range out {
			if r.Category != "pop" {
				t.Fatalf("unexpected category %q", r.Category)
			}
		}
	})

	t.Run("alphabetical sort", func(t *testing.T) {
		out, err := store.List(ctx, Filter{}, SortAlphabetical)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(out) != 3 || out[0].Title != "Alpha" || out[2].Title != "Zebra" {
			t.Fatalf("unexpected order: %+v", out)
		}
	})
}

func TestMemoryRecordStore_Update(t *testing.T) {
	store := seedMemoryStore(t, draftFor("Original", "pop"))
	ctx := context.Background()

	all, err := store.List(ctx, Filter{}, SortRecent)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	id := all[0].ID

	title := "Renamed"
	updated, err := store.Update(ctx, id, Patch{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Title != "Renamed" || updated.Category != "pop" {
		t.Fatalf("unexpected merge: %+v", updated)
	}

	if _, err := store.Update(ctx, "missing", Patch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRecordStore_DeleteAndDeleteAll(t *testing.T) {
	store := seedMemoryStore(t, draftFor("One", "pop"), draftFor("Two", "rap"))
	ctx := context.Background()

	all, _ := store.List(ctx, Filter{}, SortRecent)
	if err := store.Delete(ctx, all[0].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := store.Delete(ctx, all[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}

	count, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestMemoryRecordStore_LikesAndAggregation(t *testing.T) {
	store := seedMemoryStore(t,
		draftFor("A", "techno"),
		draftFor("B", "techno"),
		draftFor("C", "pop"),
		draftFor("D", "folk"),
	)
	ctx := context.Background()

	all, _ := store.List(ctx, Filter{}, SortAlphabetical)
	liked := true
	now := time.Now().UTC()
	for _, r := range all[:3] {
		if _, err := store.Update(ctx, r.ID, Patch{IsLiked: &liked, LikedAt: &now}); err != nil {
			t.Fatalf("like failed: %v", err)
		}
	}

	out, err := store.ListLiked(ctx)
	if err != nil {
		t.Fatalf("list liked failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("liked len = %d, want 3", len(out))
	}

	code, count, err := store.MostLikedCategory(ctx)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if code != "techno" || count != 2 {
		t.Fatalf("got (%q, %d), want (techno, 2)", code, count)
	}
}

func TestMemoryRecordStore_MostLikedCategory_TieAndEmpty(t *testing.T) {
	store := seedMemoryStore(t, draftFor("A", "rap"), draftFor("B", "folk"))
	ctx := context.Background()

	code, count, err := store.MostLikedCategory(ctx)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if code != "" || count != 0 {
		t.Fatalf("expected empty result, got (%q, %d)", code, count)
	}

	all, _ := store.List(ctx, Filter{}, SortRecent)
	liked := true
	now := time.Now().UTC()
	for _, r := range all {
		if _, err := store.Update(ctx, r.ID, Patch{IsLiked: &liked, LikedAt: &now}); err != nil {
			t.Fatalf("like failed: %v", err)
		}
	}

	code, count, err = store.MostLikedCategory(ctx)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if code != "folk" || count != 1 {
		t.Fatalf("tie should resolve to first code alphabetically, got (%q, %d)", code, count)
	}
}

func TestMemoryRecordStore_Search(t *testing.T) {
	store := seedMemoryStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, Draft{
		Title:       "Night Drive",
		Description: "late night synths",
		Category:    "techno",
		ImageRef:    "/uploads/a.jpg",
		AudioRef:    "/uploads/a.mp3",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Create(ctx, Draft{
		Title:       "Beach Day",
		Description: "sunshine",
		Category:    "beach",
		ImageRef:    "/uploads/b.jpg",
		AudioRef:    "/uploads/b.mp3",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name      string
		query     string
		field     string
		wantCount int
	}{
		{"title match", "night", SearchTitle, 1},
		{"description match", "sunshine", SearchDescription, 1},
		{"category display name match", "Techno", SearchCategory, 1},
		{"all fields", "night", SearchAll, 1},
		{"no match", "zzz", SearchAll, 0},
		{"empty query", "", SearchAll, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := store.Search(ctx, tt.query, tt.field, 50)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(out) != tt.wantCount {
				t.Fatalf("len = %d, want %d", len(out), tt.wantCount)
			}
		})
	}
}

func TestMemoryRecordStore_Search_Limit(t *testing.T) {
	store := seedMemoryStore(t)
	ctx := context.Background()

	for _, title := range []string{"Song One", "Song Two", "Song Three"} {
		if _, err := store.Create(ctx, draftFor(title, "pop")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	out, err := store.Search(ctx, "song", SearchTitle, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestMemoryRecordStore_Categories(t *testing.T) {
	store := NewMemoryRecordStore()

	cats, err := store.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}

	if len(cats) != len(SeedCategories) {
		t.Fatalf("len = %d, want %d", len(cats), len(SeedCategories))
	}

	for i := 1; i < len(cats); i++ {
		if cats[i-1].Order > cats[i].Order {
			t.Fatalf("categories out of order at %d: %+v", i, cats)
		}
	}
}

func TestMemoryRecordStore_Settings(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	s, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if s.Theme != "dark" || s.AccentColor != "#1E90FF" || s.AudioQuality != "auto" {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	theme := "light"
	autoplay := true
	updated, err := store.UpdateSettings(ctx, SettingsPatch{Theme: &theme, Autoplay: &autoplay})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	if updated.Theme != "light" || !updated.Autoplay {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.AccentColor != "#1E90FF" {
		t.Fatalf("untouched field changed: %+v", updated)
	}
	if updated.LastUpdated.IsZero() {
		t.Fatalf("lastUpdated not set")
	}
}

func TestMemoryRecordStore_Users(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	u, err := store.CreateUser(ctx, "Alice", "a@example.com", "hash")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected assigned id")
	}

	if _, err := store.CreateUser(ctx, "Alice", "a@example.com", "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	found, err := store.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if found.Name != "Alice" {
		t.Fatalf("name = %q", found.Name)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
