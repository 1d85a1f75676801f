package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

func HandleToggleLike(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := st.Library.ToggleLike(r.Context(), r.PathValue("id"))
		if err != nil {
			common.LogAndWriteError(w, r, "toggle like", err)
			return
		}

		resp.WriteOK(w, rec)
	}
}

func HandleListLiked(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := st.Records.ListLiked(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "list liked", err)
			return
		}
		if records == nil {
			records = []record.Record{}
		}

		resp.WriteOK(w, records)
	}
}

// LikedStats summarizes the liked part of the library.
type LikedStats struct {
	TotalLiked        int       `json:"totalLiked"`
	MostLikedCategory *Category `json:"mostLikedCategory"`
	RecentlyLiked     string    `json:"recentlyLiked,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func HandleLikedStats(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		liked, err := st.Records.ListLiked(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "liked stats", err)
			return
		}

		stats := LikedStats{TotalLiked: len(liked)}
		if len(liked) > 0 {
			stats.RecentlyLiked = liked[0].Title
		}

		code, count, err := st.Records.MostLikedCategory(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "liked stats", err)
			return
		}
		if code != "" {
			stats.MostLikedCategory = &Category{
				ID:    code,
				Name:  record.CategoryName(code),
				Count: count,
			}
		}

		resp.WriteOK(w, stats)
	}
}
