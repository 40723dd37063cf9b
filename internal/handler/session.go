package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

// SessionHandler logs users in and out.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin  → make a user current and hand back a session stamp
//   - HandleLogout → clear the current user and the cookie
//
// The stamp is returned twice: as an HttpOnly cookie for browsers and in the
// body for the CLI, which sends it back as "Authorization: Bearer <token>".
type SessionHandler struct {
	sessions *service.SessionService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *service.SessionService, tokens *auth.TokenService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// loginRequest is either {"userId": "..."} to resume an existing profile
// or {"name": "...", ...} to create a new one.
type loginRequest struct {
	UserID   string `json:"userId" validate:"required_without=Name,max=64"`
	Name     string `json:"name" validate:"required_without=UserID,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Location string `json:"location" validate:"max=100"`
}

type sessionResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// HandleLogin starts a session.
//
// HTTP: POST /api/session
// REQUEST BODY: {"name": "Ada", "email": "ada@example.com", "location": "London"}
//
//	or {"userId": "cq8v3..."}
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.sessions.Login(r.Context(), service.LoginInput{
		UserID:   req.UserID,
		Name:     req.Name,
		Email:    req.Email,
		Location: req.Location,
	})
	if err != nil {
		h.logger.Warn("login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	// HttpOnly = JavaScript cannot read this cookie.
	// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
	// The API listens on loopback, so Secure (HTTPS only) is left off.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, sessionResponse{User: res.User, Token: res.Token})
}

// HandleLogout clears the current user and deletes the cookie.
//
// HTTP: DELETE /api/session
//
// The stamp itself stays valid until it expires, but it no longer matches
// the current user, so profile routes reject it.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
