package account

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/soundshelf/soundshelf/server/auth"
	"github.com/soundshelf/soundshelf/server/handler/common"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/state"
	"github.com/soundshelf/soundshelf/storage/record"
)

const minPasswordLen = 8

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleRegister creates an account and opens a session for it.
func HandleRegister(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireJson(w, r); !ok {
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.WriteInvalidRequest(w, "could not parse request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		if req.Name == "" {
			resp.WriteInvalidRequest(w, "name must not be empty")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			resp.WriteInvalidRequest(w, "a valid email address is required")
			return
		}
		if len(req.Password) < minPasswordLen {
			resp.WriteInvalidRequest(w, "password must be at least 8 characters")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			common.LogAndWriteError(w, r, "register", err)
			return
		}

		u, err := st.Records.CreateUser(r.Context(), req.Name, req.Email, hash)
		if err != nil {
			common.LogAndWriteError(w, r, "register", err)
			return
		}

		if ok := startSession(w, r, st, u); !ok {
			return
		}

		resp.WriteCreated(w, sessionResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
}

// HandleLogin verifies credentials and opens a session. Wrong email and
// wrong password answer identically.
func HandleLogin(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireJson(w, r); !ok {
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.WriteInvalidRequest(w, "could not parse request body")
			return
		}

		email := strings.TrimSpace(strings.ToLower(req.Email))

		u, err := st.Records.GetUserByEmail(r.Context(), email)
		if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
			resp.WriteUnauthorized(w, "invalid email or password")
			return
		}

		if ok := startSession(w, r, st, u); !ok {
			return
		}

		resp.WriteOK(w, sessionResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
}

// HandleLogout clears the session cookie.
func HandleLogout(st *state.SoundshelfState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		resp.WriteNoContent(w)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, st *state.SoundshelfState, u *record.User) bool {
	token, err := auth.CreateToken(st.Cfg, u)
	if err != nil {
		common.LogAndWriteError(w, r, "create session", err)
		return false
	}

	http.SetCookie(w, auth.SessionCookie(st.Cfg, token))
	return true
}

func requireJson(w http.ResponseWriter, r *http.Request) (string, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		// Tolerate a missing header; the JSON decoder will reject garbage.
		return "", true
	}

	if !strings.HasPrefix(ct, "application/json") {
		resp.WriteInvalidRequest(w, "Content-Type must be application/json")
		return ct, false
	}

	return ct, true
}
