package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

// ProfileHandler serves the logged-in user's own profile and skill lists.
//
// Every route here acts on the current user, so each one first checks that
// the session stamp still names that user (SessionService.Actor). A stale
// stamp gets 403 rather than editing whoever logged in since.
type ProfileHandler struct {
	sessions *service.SessionService
	identity *service.IdentityStore
	ledger   *service.SwapLedger
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(sessions *service.SessionService, identity *service.IdentityStore, ledger *service.SwapLedger, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		sessions: sessions,
		identity: identity,
		ledger:   ledger,
		logger:   logger,
	}
}

// updateProfileRequest carries the editable profile fields.
//
// POINTER FIELDS FOR PARTIAL UPDATES:
// A nil pointer means "not sent, leave alone"; a pointer to "" means
// "clear it". A plain string could not tell those apart.
type updateProfileRequest struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Email        *string   `json:"email" validate:"omitempty,email,max=254"`
	Location     *string   `json:"location" validate:"omitempty,max=100"`
	ProfilePhoto *string   `json:"profilePhoto" validate:"omitempty,max=2048"`
	Availability *[]string `json:"availability" validate:"omitempty,dive,oneof=weekdays-morning weekdays-afternoon weekdays-evening weekends-morning weekends-afternoon weekends-evening flexible"`
	IsPublic     *bool     `json:"isPublic"`
}

type skillRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"max=50"`
}

// HandleMe returns the current user's profile.
//
// HTTP: GET /api/me
// Auth: Required
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDashboard returns the current user's summary counts.
//
// HTTP: GET /api/me/dashboard
// Auth: Required
func (h *ProfileHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	dash, err := service.BuildDashboard(r.Context(), h.identity, h.ledger, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// HandleUpdate applies a partial profile update.
//
// HTTP: PUT /api/me
// REQUEST BODY: {"location": "Paris", "isPublic": false}
//
// Rating, SwapsCompleted, Role and JoinedDate are not editable here: they
// are derived or assigned, never typed in.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.ProfilePhoto != nil {
		user.ProfilePhoto = *req.ProfilePhoto
	}
	if req.Availability != nil {
		user.Availability = *req.Availability
	}
	if req.IsPublic != nil {
		user.IsPublic = *req.IsPublic
	}

	if err := h.identity.UpdateUser(r.Context(), *user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleAddSkill appends a skill to the offered or wanted list.
//
// HTTP: POST /api/me/skills/{kind}   kind = offered | wanted
// REQUEST BODY: {"name": "Go", "description": "...", "category": "Programming"}
func (h *ProfileHandler) HandleAddSkill(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}

	var req skillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind := model.SkillKind(chi.URLParam(r, "kind"))
	user, err := h.identity.AddSkill(r.Context(), kind, model.Skill{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleRemoveSkill drops a skill from the offered or wanted list.
//
// HTTP: DELETE /api/me/skills/{kind}/{id}
func (h *ProfileHandler) HandleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}

	kind := model.SkillKind(chi.URLParam(r, "kind"))
	user, err := h.identity.RemoveSkill(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// actor resolves the stamp to the current user, writing the error response
// itself when it cannot.
func (h *ProfileHandler) actor(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	user, err := h.sessions.Actor(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return user, true
}
