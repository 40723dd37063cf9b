package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/service"
)

// AdminHandler serves the admin overview.
//
// The role check trusts the directory entry: whoever can write the store can
// make themselves admin. That matches how roles are assigned in the first
// place (by email at profile creation), so no stronger gate is pretended.
type AdminHandler struct {
	identity *service.IdentityStore
	ledger   *service.SwapLedger
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(identity *service.IdentityStore, ledger *service.SwapLedger, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{identity: identity, ledger: ledger, logger: logger}
}

// HandleStats returns directory and ledger counts.
//
// HTTP: GET /api/admin/stats
// Auth: Required, role=admin (403 otherwise)
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller, _, err := h.identity.ResolveUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	// An id missing from the directory resolves to a placeholder with no role.
	if !caller.IsAdmin() {
		h.logger.Warn("admin stats denied", slog.String("userID", userID))
		writeError(w, apperror.Forbidden("admin role required"))
		return
	}

	stats, err := service.BuildOverview(r.Context(), h.identity, h.ledger)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
