package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

func HandleListCategories(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := st.Records.Categories(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "list categories", err)
			return
		}

		resp.WriteOK(w, categories)
	}
}

func HandleCategoryMusic(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("id")
		if !record.ValidCategory(code) {
			resp.WriteNotFound(w, "unknown category")
			return
		}

		records, err := st.Records.List(r.Context(), record.Filter{Category: code}, record.SortRecent)
		if err != nil {
			common.LogAndWriteError(w, r, "list category music", err)
			return
		}
		if records == nil {
			records = []record.Record{}
		}

		resp.WriteOK(w, records)
	}
}
