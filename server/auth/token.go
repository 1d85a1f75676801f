package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soundshelf/soundshelf/config"
	"github.com/soundshelf/soundshelf/storage/record"
)

// CookieName is the session cookie the browser client sends back.
const CookieName = "soundshelf_token"

const defaultTokenTtl = 24 * time.Hour

type tokenKeyType struct{}

var tokenKey = tokenKeyType{}

// Claims is the JWT payload for a logged-in user.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CreateToken signs a token for the given user using the configured secret.
func CreateToken(cfg *config.Config, u *record.User) (string, error) {
	ttl := defaultTokenTtl
	if cfg.Auth.TokenTtl > 0 {
		ttl = time.Duration(cfg.Auth.TokenTtl) * time.Hour
	}

	now := time.Now()
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Auth.JwtSecret))
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(cfg *config.Config, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Auth.JwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ExtractToken pulls the session token from the cookie or, failing that,
// from a Bearer Authorization header.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	return ExtractBearerToken(r.Header.Get("Authorization"))
}

// ExtractBearerToken extracts a Bearer token from an Authorization header value.
// Returns an empty string if the header is absent, malformed, or not Bearer.
func ExtractBearerToken(auth string) string {
	if auth == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return token
}

// SessionCookie builds the http-only cookie carrying the signed token.
func SessionCookie(cfg *config.Config, token string) *http.Cookie {
	ttl := defaultTokenTtl
	if cfg.Auth.TokenTtl > 0 {
		ttl = time.Duration(cfg.Auth.TokenTtl) * time.Hour
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// AddClaims stores validated claims in the request context.
func AddClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, tokenKey, claims)
}

// GetClaims retrieves claims from the request context when present.
func GetClaims(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(tokenKey).(*Claims); ok {
		return claims
	}

	return nil
}
