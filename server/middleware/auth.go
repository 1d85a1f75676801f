package middleware

import (
	"log"
	"net/http"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/server/auth"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/util"
)

// WithRequestLogger attaches a request-scoped logger to the context so
// downstream handlers can log with method and path for free.
func WithRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.FromContext(r.Context()) == nil {
			rl := util.WithRequest(log.Default(), r, "")
			r = r.WithContext(util.ContextWithLogger(r.Context(), rl))
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth wraps a downstream handler. When auth is enabled it extracts
// the session token from the cookie or Authorization header, validates it,
// and attaches the claims to the request context. Requests without a valid
// token are rejected. When auth is disabled it only attaches the request
// logger and passes through.
func RequireAuth(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Auth.Enabled {
			WithRequestLogger(next).ServeHTTP(w, r)
			return
		}

		token := auth.ExtractToken(r)
		if token == "" {
			resp.WriteUnauthorized(w, "a session token is required")
			return
		}

		claims, err := auth.ParseToken(cfg, token)
		if err != nil {
			if cfg.Debug {
				rl := util.WithRequest(log.Default(), r, "")
				rl.Infof("token validation failed: %v", err)
			}
			resp.WriteUnauthorized(w, "invalid or expired session token")
			return
		}

		rl := util.WithRequest(log.Default(), r, claims.Email)
		ctx := util.ContextWithLogger(r.Context(), rl)
		next.ServeHTTP(w, r.WithContext(auth.AddClaims(ctx, claims)))
	})
}
