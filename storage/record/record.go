// Package record defines the metadata store for the music library: media
// records, the fixed category list, per-user settings, and user accounts.
package record

import (
	"context"
	"time"
)

// Record is one library entry: a title plus refs to its two blobs.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ImageRef    string     `json:"imageUrl"`
	AudioRef    string     `json:"audioUrl"`
	Artist      string     `json:"artist,omitempty"`
	Album       string     `json:"album,omitempty"`
	IsLiked     bool       `json:"isLiked"`
	LikedAt     *time.Time `json:"likedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Draft holds the caller-supplied fields for a new Record. The store assigns
// the id and createdAt.
type Draft struct {
	Title       string
	Description string
	Category    string
	ImageRef    string
	AudioRef    string
	Artist      string
	Album       string
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	ImageRef    *string
	AudioRef    *string
	Artist      *string
	Album       *string
	IsLiked     *bool
	// LikedAt sets the timestamp when non-nil; ClearLikedAt nulls it.
	LikedAt      *time.Time
	ClearLikedAt bool
}

// Category is static reference data: a stable short code, a display name,
// and a sort order.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// DefaultCategory is the fallback code applied when a record is created
// without one.
const DefaultCategory = "pop"

// SeedCategories is the closed set of category codes, in display order.
// It is the single source of truth for category validation and seeding.
var SeedCategories = []Category{
	{ID: "workout", Name: "Work Out", Order: 1},
	{ID: "techno", Name: "Techno 90s", Order: 2},
	{ID: "quiet", Name: "Quiet Hours", Order: 3},
	{ID: "rap", Name: "Rap", Order: 4},
	{ID: "focus", Name: "Deep Focus", Order: 5},
	{ID: "beach", Name: "Beach Vibes", Order: 6},
	{ID: "pop", Name: "Pop Hits", Order: 7},
	{ID: "movie", Name: "Movie Classics", Order: 8},
	{ID: "folk", Name: "Folk Music", Order: 9},
	{ID: "travel", Name: "Travelling", Order: 10},
	{ID: "kids", Name: "For Kids", Order: 11},
	{ID: "80s", Name: "80s Hits", Order: 12},
}

// ValidCategory reports whether code is one of the seeded category codes.
func ValidCategory(code string) bool {
	for _, c := range SeedCategories {
		if c.ID == code {
			return true
		}
	}
	return false
}

// CategoryName returns the display name for a code, or "Unknown".
func CategoryName(code string) string {
	for _, c := range SeedCategories {
		if c.ID == code {
			return c.Name
		}
	}
	return "Unknown"
}

// Settings is the single per-user preferences row. The application runs with
// one logical user ("default") in absence of multi-tenancy.
type Settings struct {
	UserID                  string    `json:"userId"`
	Theme                   string    `json:"theme"`
	AccentColor             string    `json:"accentColor"`
	ShowCategoriesInLibrary bool      `json:"showCategoriesInLibrary"`
	GroupByCategory         bool      `json:"groupByCategory"`
	ShowRecentlyPlayed      bool      `json:"showRecentlyPlayed"`
	Autoplay                bool      `json:"autoplay"`
	AudioQuality            string    `json:"audioQuality"`
	LastUpdated             time.Time `json:"lastUpdated"`
}

// DefaultSettings returns the settings row created lazily on first read.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:                  userID,
		Theme:                   "dark",
		AccentColor:             "#1E90FF",
		ShowCategoriesInLibrary: true,
		GroupByCategory:         true,
		ShowRecentlyPlayed:      true,
		Autoplay:                false,
		AudioQuality:            "auto",
	}
}

// SettingsPatch describes a partial settings update. Nil fields are untouched.
type SettingsPatch struct {
	Theme                   *string `json:"theme"`
	AccentColor             *string `json:"accentColor"`
	ShowCategoriesInLibrary *bool   `json:"showCategoriesInLibrary"`
	GroupByCategory         *bool   `json:"groupByCategory"`
	ShowRecentlyPlayed      *bool   `json:"showRecentlyPlayed"`
	Autoplay                *bool   `json:"autoplay"`
	AudioQuality            *string `json:"audioQuality"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sort orders for List.
type Sort string

const (
	SortRecent       Sort = "recent"       // createdAt desc (default)
	SortAlphabetical Sort = "alphabetical" // title asc
	SortCategory     Sort = "category"     // category asc
)

// Filter narrows List results.
type Filter struct {
	Category string
}

// Search fields.
const (
	SearchTitle       = "title"
	SearchDescription = "description"
	SearchCategory    = "category"
	SearchAll         = "all"
)

// Store is the interface over media record persistence. Implementations must
// tolerate concurrent calls on independent ids; same-id writes are last
// write wins.
type Store interface {
	Create(ctx context.Context, draft Draft) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter Filter, sort Sort) ([]Record, error)
	ListLiked(ctx context.Context) ([]Record, error)
	Search(ctx context.Context, query string, field string, limit int) ([]Record, error)
	Update(ctx context.Context, id string, patch Patch) (*Record, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	// MostLikedCategory returns the category code with the most liked
	// records and its count. Ties break lexicographically by code. Returns
	// ("", 0, nil) when nothing is liked.
	MostLikedCategory(ctx context.Context) (string, int, error)

	Categories(ctx context.Context) ([]Category, error)

	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error)

	CreateUser(ctx context.Context, name string, email string, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
