package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

func HandleGet(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := st.Records.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			common.LogAndWriteError(w, r, "get music", err)
			return
		}

		resp.WriteOK(w, rec)
	}
}

// HandleList returns the library, optionally filtered by category and
// sorted. With grouped=true the records come back bucketed per category in
// seed order.
func HandleList(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := record.Filter{Category: q.Get("category")}
		if filter.Category != "" && !record.ValidCategory(filter.Category) {
			resp.WriteInvalidRequest(w, "unknown category")
			return
		}

		sort, ok := parseSort(q.Get("sort"))
		if !ok {
			resp.WriteInvalidRequest(w, "sort must be one of recent, alphabetical, category")
			return
		}

		records, err := st.Records.List(r.Context(), filter, sort)
		if err != nil {
			common.LogAndWriteError(w, r, "list music", err)
			return
		}
		if records == nil {
			records = []record.Record{}
		}

		if q.Get("grouped") == "true" {
			resp.WriteOK(w, groupByCategory(records))
			return
		}

		resp.WriteOK(w, records)
	}
}

func parseSort(value string) (record.Sort, bool) {
	switch value {
	case "", "recent":
		return record.SortRecent, true
	case "alphabetical":
		return record.SortAlphabetical, true
	case "category":
		return record.SortCategory, true
	default:
		return record.SortRecent, false
	}
}

// CategoryGroup is one bucket of the grouped listing.
type CategoryGroup struct {
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Music    []record.Record `json:"music"`
}

func groupByCategory(records []record.Record) []CategoryGroup {
	byCode := make(map[string][]record.Record)
	for _, rec := range records {
		byCode[rec.Category] = append(byCode[rec.Category], rec)
	}

	var out []CategoryGroup
	for _, c := range record.SeedCategories {
		if recs, ok := byCode[c.ID]; ok {
			out = append(out, CategoryGroup{Category: c.ID, Name: c.Name, Music: recs})
		}
	}

	return out
}
