package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/server/handler/account"
	"github.com/soundshelf/soundshelf/server/handler/music"
	"github.com/soundshelf/soundshelf/server/handler/prefs"
	"github.com/soundshelf/soundshelf/server/middleware"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	blobfactory "github.com/soundshelf/soundshelf/storage/blob/factory"
	recordfactory "github.com/soundshelf/soundshelf/storage/record/factory"
)

// BuildState constructs the configured stores and the workflow service.
func BuildState(cfg *config.Config) (*state.SoundshelfState, error) {
	blobs, err := blobfactory.Create(&cfg.Blobs)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	records, err := recordfactory.Create(&cfg.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}

	return &state.SoundshelfState{
		Cfg:     cfg,
		Blobs:   blobs,
		Records: records,
		Library: &library.Service{
			Blobs:       blobs,
			Records:     records,
			MaxFileSize: int64(cfg.Server.Limits.MaxFileSize),
		},
	}, nil
}

// BuildMux wires every route. Mutating routes go through the auth
// middleware; reads only pick up the request logger.
func BuildMux(st *state.SoundshelfState) *http.ServeMux {
	cfg := st.Cfg
	mux := http.NewServeMux()

	open := func(h http.HandlerFunc) http.Handler { return middleware.WithRequestLogger(h) }
	guarded := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(cfg, h) }

	mux.Handle("POST /api/auth/register", open(account.HandleRegister(st)))
	mux.Handle("POST /api/auth/login", open(account.HandleLogin(st)))
	mux.Handle("POST /api/auth/logout", open(account.HandleLogout(st)))

	mux.Handle("GET /api/music", open(music.HandleList(st)))
	mux.Handle("GET /api/music/{id}", open(music.HandleGet(st)))
	mux.Handle("POST /api/music", guarded(music.HandleCreate(st)))
	mux.Handle("PUT /api/music/{id}", guarded(music.HandleUpdate(st)))
	mux.Handle("DELETE /api/music/{id}", guarded(music.HandleDelete(st)))
	mux.Handle("POST /api/music/{id}/like", guarded(music.HandleToggleLike(st)))

	mux.Handle("GET /api/search", open(music.HandleSearch(st)))
	mux.Handle("GET /api/liked", open(music.HandleListLiked(st)))
	mux.Handle("GET /api/liked/stats", open(music.HandleLikedStats(st)))
	mux.Handle("GET /api/categories", open(music.HandleListCategories(st)))
	mux.Handle("GET /api/categories/{id}/music", open(music.HandleCategoryMusic(st)))

	mux.Handle("GET /api/settings", open(prefs.HandleGetSettings(st)))
	mux.Handle("PUT /api/settings", guarded(prefs.HandleUpdateSettings(st)))
	mux.Handle("POST /api/settings/clear-data", guarded(prefs.HandleClearData(st)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		resp.WriteOK(w, map[string]string{"status": "ok"})
	})

	// With filesystem blobs the upload directory is served straight from
	// disk under the public base URL.
	if cfg.Blobs.Strategy == "filesystem" && cfg.Blobs.Filesystem != nil {
		prefix := "/" + strings.Trim(cfg.Blobs.PublicBaseUrl, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Blobs.Filesystem.Path))))
	}

	return mux
}

// StartServer builds the state and mux and serves until the process dies.
func StartServer(cfg *config.Config) {
	st, err := BuildState(cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	mux := BuildMux(st)

	bindAddress := fmt.Sprintf("%v:%v", cfg.Server.Address, cfg.Server.Port)
	log.Printf("serving http requests on %q", bindAddress)
	log.Fatal(http.ListenAndServe(bindAddress, mux))
}
