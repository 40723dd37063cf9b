package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the cookie that carries the session stamp.
const CookieName = "token"

// errNoToken means the request carried neither a cookie nor a bearer token.
var errNoToken = errors.New("auth: no session token")

// ctxKey is private so no other package can read or overwrite the stamp's
// user id in a request context.
type ctxKey struct{}

// RequireAuth rejects requests without a valid session stamp with 401 and
// puts the stamp's user id into the context of the ones it lets through.
//
// WHERE THE STAMP COMES FROM:
//  1. the "token" HttpOnly cookie set by POST /api/session (browsers)
//  2. an "Authorization: Bearer <jwt>" header (the CLI and scripts)
//
// The cookie is checked first. A present but broken cookie is not retried
// against the header: the caller sent a bad stamp and is told so.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				unauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth attaches the stamp's user id when a valid stamp is present
// and lets every request through. Directory and discovery routes use it:
// anonymous callers see everyone, a stamped caller is left out of their own
// candidate list.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID as the stamped user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the stamped user id, or ("", false) for an
// anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return tokens.Validate(cookie.Value)
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", errNoToken
	}
	return tokens.Validate(token)
}

// unauthorized writes the same error body shape the handlers use.
// "session_required" means no stamp was sent; "invalid_session" means one
// was sent but is expired, tampered with or signed for another server.
func unauthorized(w http.ResponseWriter, err error) {
	body := map[string]string{
		"error":   "invalid_session",
		"message": "session stamp is invalid or expired; log in again",
	}
	if errors.Is(err, errNoToken) {
		body["error"] = "session_required"
		body["message"] = "log in first"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="skillswap"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(body)
}
