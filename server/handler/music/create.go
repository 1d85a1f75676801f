package music

import (
	"net/http"

	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/server/util"
)

// HandleCreate accepts a multipart form with title, description, category
// and the image/audio file parts, and creates a record through the upload
// workflow.
func HandleCreate(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := util.RequireValidUploadContentType(w, r); !ok {
			return
		}

		in, pm, ok := parseUploadForm(w, r, st)
		if !ok {
			return
		}
		defer pm.CloseFiles()

		rec, err := st.Library.Upload(r.Context(), library.UploadInput{
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Image:       in.Image,
			Audio:       in.Audio,
		})
		if err != nil {
			common.LogAndWriteError(w, r, "create music", err)
			return
		}

		resp.WriteCreated(w, rec)
	}
}

type uploadForm struct {
	Title       string
	Description string
	Category    string
	Image       *library.FileInput
	Audio       *library.FileInput
}

// parseUploadForm parses the multipart body and converts the two well-known
// file parts. Per-file size and type rules live in the workflow layer, only
// the whole-body cap is enforced here.
func parseUploadForm(w http.ResponseWriter, r *http.Request, st *state.SoundshelfState) (*uploadForm, *util.ParsedMultipart, bool) {
	maxMemory := int64(st.Cfg.Server.Limits.MaxMultipartMem)
	maxFileSize := int64(st.Cfg.Server.Limits.MaxFileSize)

	// Two file parts plus some headroom for the text fields.
	pm, err := util.ParseMultipart(w, r, maxMemory, 2*maxFileSize+maxMemory)
	if err != nil {
		resp.WriteInvalidRequest(w, "could not parse multipart form")
		return nil, nil, false
	}

	form := &uploadForm{
		Title:       pm.Values["title"],
		Description: pm.Values["description"],
		Category:    pm.Values["category"],
		Image:       fileInputFor(pm, "image"),
		Audio:       fileInputFor(pm, "audio"),
	}

	return form, pm, true
}

func fileInputFor(pm *util.ParsedMultipart, key string) *library.FileInput {
	mf := pm.FileByKey(key)
	if mf == nil {
		return nil
	}

	return &library.FileInput{
		Name:        mf.Header.Filename,
		ContentType: mf.Header.Header.Get("Content-Type"),
		Size:        mf.Header.Size,
		Reader:      mf.File,
	}
}
