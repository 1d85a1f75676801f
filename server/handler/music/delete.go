package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
)

// HandleDelete removes a record together with both of its blobs.
func HandleDelete(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Library.Delete(r.Context(), r.PathValue("id")); err != nil {
			common.LogAndWriteError(w, r, "delete music", err)
			return
		}

		resp.WriteNoContent(w)
	}
}
