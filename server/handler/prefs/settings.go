package prefs

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/server/util"
	"github.com/soundshelf/soundshelf/storage/record"
)

var (
	validThemes    = []string{"dark", "light"}
	validQualities = []string{"auto", "low", "medium", "high"}
)

// totalStorageBytes is the advertised library capacity backing the usage gauge.
const totalStorageBytes = int64(5 * 1024 * 1024 * 1024)

type storageSummary struct {
	UsedBytes  int64 `json:"usedBytes"`
	TotalBytes int64 `json:"totalBytes"`
	Percentage int   `json:"percentage"`
}

type settingsResponse struct {
	*record.Settings
	Storage storageSummary `json:"storage"`
}

// HandleGetSettings returns the settings row plus the current blob storage
// usage. Settings are created with defaults on first read.
func HandleGetSettings(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := st.Records.GetSettings(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "get settings", err)
			return
		}

		usage, err := st.Blobs.Usage(r.Context())
		if err != nil {
			// The gauge is cosmetic, the settings themselves still matter.
			if rl := util.FromContext(r.Context()); rl != nil {
				rl.Errorf("storage usage lookup failed: %v", err)
			}
			usage = 0
		}

		resp.WriteOK(w, settingsResponse{Settings: settings, Storage: storageSummary{
			UsedBytes:  usage,
			TotalBytes: totalStorageBytes,
			Percentage: int(usage * 100 / totalStorageBytes),
		}})
	}
}

// HandleUpdateSettings applies a partial settings update.
func HandleUpdateSettings(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := util.RequireValidJsonContentType(w, r); !ok {
			return
		}

		var patch record.SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			resp.WriteInvalidRequest(w, "could not parse request body")
			return
		}

		if patch.Theme != nil && !slices.Contains(validThemes, *patch.Theme) {
			resp.WriteInvalidRequest(w, "theme must be dark or light")
			return
		}
		if patch.AudioQuality != nil && !slices.Contains(validQualities, *patch.AudioQuality) {
			resp.WriteInvalidRequest(w, "audioQuality must be one of auto, low, medium, high")
			return
		}

		settings, err := st.Records.UpdateSettings(r.Context(), patch)
		if err != nil {
			common.LogAndWriteError(w, r, "update settings", err)
			return
		}

		resp.WriteOK(w, settings)
	}
}

type clearRequest struct {
	Confirmed bool `json:"confirmed"`
}

// HandleClearData wipes the whole library. The body must carry an explicit
// confirmation flag.
func HandleClearData(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := util.RequireValidJsonContentType(w, r); !ok {
			return
		}

		var req clearRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.WriteInvalidRequest(w, "could not parse request body")
			return
		}

		summary, err := st.Library.Clear(r.Context(), req.Confirmed)
		if err != nil {
			common.LogAndWriteError(w, r, "clear data", err)
			return
		}

		resp.WriteOK(w, summary)
	}
}
