package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

const searchResultLimit = 50

// HandleSearch matches the query against titles, descriptions, or category
// display names depending on the filter parameter.
func HandleSearch(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		field, ok := parseSearchField(q.Get("filter"))
		if !ok {
			resp.WriteInvalidRequest(w, "filter must be one of title, description, category, all")
			return
		}

		records, err := st.Records.Search(r.Context(), q.Get("q"), field, searchResultLimit)
		if err != nil {
			common.LogAndWriteError(w, r, "search music", err)
			return
		}
		if records == nil {
			records = []record.Record{}
		}

		resp.WriteOK(w, records)
	}
}

func parseSearchField(value string) (string, bool) {
	switch value {
	case "", "all":
		return record.SearchAll, true
	case "title":
		return record.SearchTitle, true
	case "description":
		return record.SearchDescription, true
	case "category":
		return record.SearchCategory, true
	default:
		return "", false
	}
}
