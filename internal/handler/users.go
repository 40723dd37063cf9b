package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/match"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

// UserHandler serves the directory and candidate discovery.
// These routes are public; a valid stamp only removes the caller from
// their own candidate list.
type UserHandler struct {
	identity *service.IdentityStore
	logger   *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(identity *service.IdentityStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{identity: identity, logger: logger}
}

type resolvedUser struct {
	User  model.User `json:"user"`
	Found bool       `json:"found"`
}

type filterOptions struct {
	Categories   []string `json:"categories"`
	Locations    []string `json:"locations"`
	Availability []string `json:"availability"`
}

// HandleList returns the whole directory, private profiles included.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.identity.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet resolves one id. Unknown ids are not a 404: the response holds
// the "Unknown User" placeholder with found=false, because swap requests
// keep pointing at users who may have left the directory.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, found, err := h.identity.ResolveUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolvedUser{User: user, Found: found})
}

// HandleCandidates lists possible swap partners.
//
// HTTP: GET /api/candidates?q=guitar&category=Music&location=London
// Auth: Optional
//
// QUERY PARAMETERS:
// r.URL.Query().Get returns "" for a missing parameter, which the filter
// treats as "match everything", so no defaults are needed.
func (h *UserHandler) HandleCandidates(w http.ResponseWriter, r *http.Request) {
	users, current, err := h.directory(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	filter := match.Filter{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Location: q.Get("location"),
	}
	writeJSON(w, http.StatusOK, match.FindCandidates(current, users, filter))
}

// HandleFilters returns the choices for the candidate filter pickers.
//
// HTTP: GET /api/candidates/filters
// Auth: Optional
func (h *UserHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	users, current, err := h.directory(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filterOptions{
		Categories:   match.Categories,
		Locations:    match.Locations(current, users),
		Availability: match.Availability,
	})
}

// directory loads the users and, when the request carries a stamp, the
// caller's own entry.
func (h *UserHandler) directory(r *http.Request) ([]model.User, *model.User, error) {
	users, err := h.identity.Users(r.Context())
	if err != nil {
		return nil, nil, err
	}
	var current *model.User
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		for i := range users {
			if users[i].ID == id {
				current = &users[i]
				break
			}
		}
		if current == nil {
			// Not in the directory but still not a candidate for themselves.
			current = &model.User{ID: id}
		}
	}
	return users, current, nil
}
