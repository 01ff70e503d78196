// Package session issues and verifies the cookie-borne session token.
//
// The token is an HS256 JWT carrying the user id and an expiry. Parsing never
// surfaces an error: an absent cookie, a tampered signature and an expired
// token all behave identically to "no session", so callers only ever see an
// anonymous request rather than a failure.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	TTL        = 7 * 24 * time.Hour
)

type ctxKey string

const userCtxKey = ctxKey("sessionUser")

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Codec signs and verifies session tokens with a fixed secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Token produces a signed token for userID expiring after TTL.
func (c *Codec) Token(userID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
		UserID: userID,
	})
	return t.SignedString(c.secret)
}

// Create sets the session cookie for userID. The cookie expiry matches the
// token expiry.
func (c *Codec) Create(w http.ResponseWriter, userID string) {
	value, err := c.Token(userID)
	if err != nil {
		// HS256 signing over a fixed secret cannot realistically fail;
		// fall through with an empty cookie rather than panicking.
		value = ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  c.now().Add(TTL),
	})
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// ParseToken returns the user id for a valid, unexpired token. Every failure
// mode returns ("", false).
func (c *Codec) ParseToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	parsed := &claims{}
	t, err := jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !t.Valid || parsed.UserID == "" {
		return "", false
	}
	return parsed.UserID, true
}

// Parse extracts and verifies the session cookie from a request.
func (c *Codec) Parse(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return c.ParseToken(cookie.Value)
}

// WithUser stores the authenticated user id in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userCtxKey, userID)
}

// UserFromContext extracts the authenticated user id.
func UserFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userCtxKey).(string)
	return v, ok && v != ""
}

// Middleware attaches the session user to the request context when a valid
// cookie is present. Anonymous requests pass through untouched.
func (c *Codec) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := c.Parse(r); ok {
			r = r.WithContext(WithUser(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an authenticated user. The owner of
// every protected resource is derived from this identity, never from a
// caller-supplied parameter.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
