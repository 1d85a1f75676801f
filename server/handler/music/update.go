package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/server/util"
)

// HandleUpdate applies a partial update. All form fields and both file
// parts are optional; absent fields keep their stored value.
func HandleUpdate(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := util.RequireValidUploadContentType(w, r); !ok {
			return
		}

		id := r.PathValue("id")

		form, pm, ok := parseUploadForm(w, r, st)
		if !ok {
			return
		}
		defer pm.CloseFiles()

		in := library.UpdateInput{
			Image: form.Image,
			Audio: form.Audio,
		}
		if _, ok := pm.Values["title"]; ok {
			in.Title = &form.Title
		}
		if _, ok := pm.Values["description"]; ok {
			in.Description = &form.Description
		}
		if _, ok := pm.Values["category"]; ok {
			in.Category = &form.Category
		}

		rec, err := st.Library.Update(r.Context(), id, in)
		if err != nil {
			common.LogAndWriteError(w, r, "update music", err)
			return
		}

		resp.WriteOK(w, rec)
	}
}
