package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

// SwapHandler drives the swap request lifecycle over HTTP.
//
// The acting user always comes from the session stamp, never from the body:
// a client cannot accept a request "as" the target by naming them.
type SwapHandler struct {
	ledger     *service.SwapLedger
	reputation *service.Reputation
	identity   *service.IdentityStore
	logger     *slog.Logger
}

// NewSwapHandler creates a SwapHandler.
func NewSwapHandler(
	ledger *service.SwapLedger,
	reputation *service.Reputation,
	identity *service.IdentityStore,
	logger *slog.Logger,
) *SwapHandler {
	return &SwapHandler{
		ledger:     ledger,
		reputation: reputation,
		identity:   identity,
		logger:     logger,
	}
}

type createSwapRequest struct {
	TargetID         string `json:"targetId" validate:"required,max=64"`
	RequestedSkillID string `json:"requestedSkillId" validate:"required,max=64"`
	OfferedSkillID   string `json:"offeredSkillId" validate:"required,max=64"`
	Message          string `json:"message" validate:"max=1000"`
}

// rateRequest leaves the 1..5 range to the ledger so that an out-of-range
// rating is reported as invalid_rating, not as a generic validation error.
type rateRequest struct {
	Rating   *int   `json:"rating" validate:"required"`
	Feedback string `json:"feedback" validate:"max=1000"`
}

// swapView is a swap request with both parties' display names resolved.
// Embedding flattens the request's fields into the same JSON object.
type swapView struct {
	model.SwapRequest
	RequesterName string `json:"requesterName"`
	TargetName    string `json:"targetName"`
}

// HandleList returns one of the caller's swap boxes.
//
// HTTP: GET /api/swaps?box=received|sent|completed   (default received)
// Auth: Required
func (h *SwapHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var requests []model.SwapRequest
	switch box := r.URL.Query().Get("box"); box {
	case "", "received":
		requests, err = h.ledger.Received(r.Context(), userID)
	case "sent":
		requests, err = h.ledger.Sent(r.Context(), userID)
	case "completed":
		requests, err = h.ledger.CompletedFor(r.Context(), userID)
	default:
		err = apperror.ValidationFailed("box", "box must be one of: received sent completed")
	}
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := h.views(r.Context(), requests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleCreate proposes a swap from the caller to targetId.
//
// HTTP: POST /api/swaps
// REQUEST BODY: {"targetId": "...", "requestedSkillId": "...", "offeredSkillId": "...", "message": "..."}
// Auth: Required
func (h *SwapHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createSwapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	swap, err := h.ledger.CreateSwapRequest(r.Context(), service.NewSwapRequest{
		RequesterID:      userID,
		TargetID:         req.TargetID,
		RequestedSkillID: req.RequestedSkillID,
		OfferedSkillID:   req.OfferedSkillID,
		Message:          req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeSwap(w, r, http.StatusCreated, swap)
}

// transitionFunc is the shape shared by Accept, Reject and Complete.
type transitionFunc func(ctx context.Context, id, actorID string) (*model.SwapRequest, error)

// HandleAccept → POST /api/swaps/{id}/accept (target only)
func (h *SwapHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.ledger.Accept)
}

// HandleReject → POST /api/swaps/{id}/reject (target only)
func (h *SwapHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.ledger.Reject)
}

// HandleComplete → POST /api/swaps/{id}/complete (either party)
func (h *SwapHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.reputation.Complete)
}

func (h *SwapHandler) handleTransition(w http.ResponseWriter, r *http.Request, move transitionFunc) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	swap, err := move(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeSwap(w, r, http.StatusOK, swap)
}

// HandleRate rates a completed swap and refreshes the other party's
// reputation.
//
// HTTP: POST /api/swaps/{id}/rating
// REQUEST BODY: {"rating": 5, "feedback": "very patient"}
// Auth: Required
func (h *SwapHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	swap, err := h.reputation.Rate(r.Context(), chi.URLParam(r, "id"), userID, *req.Rating, req.Feedback)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeSwap(w, r, http.StatusOK, swap)
}

// HandleCancel withdraws a pending request the caller sent.
//
// HTTP: DELETE /api/swaps/{id}
// Auth: Required
func (h *SwapHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.Cancel(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent) // 204 No Content: successful deletion, no body
}

func (h *SwapHandler) writeSwap(w http.ResponseWriter, r *http.Request, status int, swap *model.SwapRequest) {
	views, err := h.views(r.Context(), []model.SwapRequest{*swap})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, views[0])
}

// views resolves party names. The directory is loaded once per call, not
// once per request in the list.
func (h *SwapHandler) views(ctx context.Context, requests []model.SwapRequest) ([]swapView, error) {
	users, err := h.identity.Users(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return service.UnknownUserName
	}

	out := make([]swapView, 0, len(requests))
	for _, req := range requests {
		out = append(out, swapView{
			SwapRequest:   req,
			RequesterName: name(req.RequesterID),
			TargetName:    name(req.TargetID),
		})
	}
	return out, nil
}
