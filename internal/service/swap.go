package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/repository"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// NewSwapRequest is the caller-supplied part of a swap request.
// The ledger fills in the id, status and timestamps.
type NewSwapRequest struct {
	RequesterID      string
	TargetID         string
	RequestedSkillID string
	OfferedSkillID   string
	Message          string
}

// SwapPatch is a partial update. Nil fields are left unchanged.
//
// Only lifecycle fields are patchable: the parties, skills and message of a
// request are fixed at creation.
type SwapPatch struct {
	Status      *model.SwapStatus
	CompletedAt *time.Time
	Rating      *int
	Feedback    *string
	RatedBy     *string
}

// LedgerStats counts requests per status.
type LedgerStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
}

// TransitionObserver is told about every committed status change.
// The metrics layer implements it; nil means nobody listens.
type TransitionObserver interface {
	ObserveTransition(from, to string)
}

// SwapLedger owns the swap requests and enforces their lifecycle:
//
//	pending ──accept──▶ accepted ──complete──▶ completed ──rate (once)
//	   │  └──reject──▶ rejected
//	   └──cancel──▶ (removed)
type SwapLedger struct {
	store    repository.Store
	logger   *slog.Logger
	observer TransitionObserver
	now      func() time.Time

	mu sync.Mutex
}

// NewSwapLedger creates a SwapLedger.
func NewSwapLedger(store repository.Store, logger *slog.Logger) *SwapLedger {
	return &SwapLedger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithObserver registers o for status-change notifications and returns l.
func (l *SwapLedger) WithObserver(o TransitionObserver) *SwapLedger {
	l.observer = o
	return l
}

// CreateSwapRequest appends a new pending request.
//
// Requester and target must be non-empty and different. The skill ids are
// weak references and are not checked against any profile.
func (l *SwapLedger) CreateSwapRequest(ctx context.Context, in NewSwapRequest) (*model.SwapRequest, error) {
	in.RequesterID = strings.TrimSpace(in.RequesterID)
	in.TargetID = strings.TrimSpace(in.TargetID)
	if in.RequesterID == "" {
		return nil, apperror.ValidationFailed("requesterId", "requester is required")
	}
	if in.TargetID == "" {
		return nil, apperror.ValidationFailed("targetId", "target is required")
	}
	if in.RequesterID == in.TargetID {
		return nil, apperror.ValidationFailed("targetId", "cannot request a swap with yourself")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	requests, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	req := model.SwapRequest{
		ID:               xid.New().String(),
		RequesterID:      in.RequesterID,
		TargetID:         in.TargetID,
		RequestedSkillID: in.RequestedSkillID,
		OfferedSkillID:   in.OfferedSkillID,
		Message:          strings.TrimSpace(in.Message),
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := l.save(ctx, append(requests, req)); err != nil {
		return nil, err
	}

	l.logger.Info("swap requested",
		slog.String("id", req.ID),
		slog.String("requesterID", req.RequesterID),
		slog.String("targetID", req.TargetID),
	)
	l.notify("", string(req.Status))
	return &req, nil
}

// UpdateSwapRequest merges patch into the request with the given id and
// refreshes UpdatedAt.
//
// GUARDS:
//   - unknown id                               → apperror.ErrNotFound
//   - status change not in the lifecycle       → apperror.ErrIllegalTransition
//   - rating fields on a non-completed request → apperror.ErrIllegalTransition
//   - rating fields on an already rated one    → apperror.ErrIllegalTransition
//   - rating outside 1..5                      → apperror.ErrInvalidRating
//
// On any error the ledger is left unchanged.
func (l *SwapLedger) UpdateSwapRequest(ctx context.Context, id string, patch SwapPatch) (*model.SwapRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	requests, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfRequest(requests, id)
	if i < 0 {
		return nil, apperror.NotFound("swap request", id)
	}

	now := l.now().UTC()
	updated := requests[i]
	from := updated.Status
	if err := applyPatch(&updated, patch, now); err != nil {
		return nil, err
	}

	// UpdatedAt never moves backwards, even if the clock does.
	if now.After(updated.UpdatedAt) {
		updated.UpdatedAt = now
	}
	requests[i] = updated

	if err := l.save(ctx, requests); err != nil {
		return nil, err
	}

	if updated.Status != from {
		l.logger.Info("swap status changed",
			slog.String("id", id),
			slog.String("from", string(from)),
			slog.String("to", string(updated.Status)),
		)
		l.notify(string(from), string(updated.Status))
	}
	return &updated, nil
}

// applyPatch validates patch against r and applies it in place.
// Moving to completed stamps CompletedAt with now unless the patch carries one.
func applyPatch(r *model.SwapRequest, patch SwapPatch, now time.Time) error {
	movedToCompleted := false
	if patch.Status != nil && *patch.Status != r.Status {
		if !patch.Status.Valid() || !model.CanTransition(r.Status, *patch.Status) {
			return apperror.IllegalTransition(r.ID, string(r.Status), string(*patch.Status))
		}
		r.Status = *patch.Status
		movedToCompleted = r.Status == model.StatusCompleted
	}
	if patch.CompletedAt != nil && !movedToCompleted {
		return apperror.IllegalTransition(r.ID, string(r.Status), string(model.StatusCompleted))
	}
	if movedToCompleted {
		at := now
		if patch.CompletedAt != nil {
			at = patch.CompletedAt.UTC()
		}
		r.CompletedAt = &at
	}

	if patch.Rating != nil || patch.Feedback != nil || patch.RatedBy != nil {
		if r.Status != model.StatusCompleted {
			return apperror.IllegalTransition(r.ID, string(r.Status), "rated")
		}
		if r.Rated() {
			return apperror.IllegalTransition(r.ID, "rated", "rated")
		}
		if patch.Rating == nil {
			return apperror.ValidationFailed("rating", "rating is required")
		}
		if *patch.Rating < MinRating || *patch.Rating > MaxRating {
			return apperror.InvalidRating(*patch.Rating)
		}
		rating := *patch.Rating
		r.Rating = &rating
		if patch.Feedback != nil {
			feedback := strings.TrimSpace(*patch.Feedback)
			r.Feedback = &feedback
		}
		if patch.RatedBy != nil {
			ratedBy := *patch.RatedBy
			r.RatedBy = &ratedBy
		}
	}
	return nil
}

// DeleteSwapRequest removes the request if present. Deleting a missing id
// is a no-op, so calling it twice is safe.
func (l *SwapLedger) DeleteSwapRequest(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.deleteLocked(ctx, id)
	return err
}

func (l *SwapLedger) deleteLocked(ctx context.Context, id string) (bool, error) {
	requests, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfRequest(requests, id)
	if i < 0 {
		return false, nil
	}
	requests = append(requests[:i], requests[i+1:]...)
	if err := l.save(ctx, requests); err != nil {
		return false, err
	}
	l.logger.Info("swap request deleted", slog.String("id", id))
	return true, nil
}

// Accept moves a pending request to accepted. Only the target may accept.
func (l *SwapLedger) Accept(ctx context.Context, id, actorID string) (*model.SwapRequest, error) {
	return l.transition(ctx, id, actorID, model.StatusAccepted, targetOnly)
}

// Reject moves a pending request to rejected. Only the target may reject.
func (l *SwapLedger) Reject(ctx context.Context, id, actorID string) (*model.SwapRequest, error) {
	return l.transition(ctx, id, actorID, model.StatusRejected, targetOnly)
}

// Complete moves an accepted request to completed and stamps CompletedAt.
// Either party may complete.
func (l *SwapLedger) Complete(ctx context.Context, id, actorID string) (*model.SwapRequest, error) {
	return l.transition(ctx, id, actorID, model.StatusCompleted, eitherParty)
}

// Cancel withdraws a pending request, removing it from the ledger.
// Only the requester may cancel, and only while the request is pending.
func (l *SwapLedger) Cancel(ctx context.Context, id, actorID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, err := l.getLocked(ctx, id)
	if err != nil {
		return err
	}
	if req.RequesterID != actorID {
		return apperror.Forbidden("only the requester can cancel a swap request")
	}
	if req.Status != model.StatusPending {
		return apperror.IllegalTransition(id, string(req.Status), "cancelled")
	}
	if _, err := l.deleteLocked(ctx, id); err != nil {
		return err
	}
	l.notify(string(model.StatusPending), "cancelled")
	return nil
}

// Rate attaches a 1..5 rating and optional feedback to a completed request.
// Either party may rate; a request carries at most one rating.
func (l *SwapLedger) Rate(ctx context.Context, id, actorID string, rating int, feedback string) (*model.SwapRequest, error) {
	req, err := l.GetSwapRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Involves(actorID) {
		return nil, apperror.Forbidden("only a party to the swap can rate it")
	}
	updated, err := l.UpdateSwapRequest(ctx, id, SwapPatch{
		Rating:   &rating,
		Feedback: &feedback,
		RatedBy:  &actorID,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("swap rated",
		slog.String("id", id),
		slog.String("ratedBy", actorID),
		slog.Int("rating", rating),
	)
	return updated, nil
}

type actorRule int

const (
	targetOnly actorRule = iota
	eitherParty
)

func (l *SwapLedger) transition(ctx context.Context, id, actorID string, to model.SwapStatus, rule actorRule) (*model.SwapRequest, error) {
	req, err := l.GetSwapRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rule {
	case targetOnly:
		if req.TargetID != actorID {
			return nil, apperror.Forbidden(fmt.Sprintf("only the target can move a swap request to %s", to))
		}
	case eitherParty:
		if !req.Involves(actorID) {
			return nil, apperror.Forbidden(fmt.Sprintf("only a party to the swap can move it to %s", to))
		}
	}

	if !model.CanTransition(req.Status, to) {
		return nil, apperror.IllegalTransition(id, string(req.Status), string(to))
	}
	return l.UpdateSwapRequest(ctx, id, SwapPatch{Status: &to})
}

// GetSwapRequest returns the request with the given id.
func (l *SwapLedger) GetSwapRequest(ctx context.Context, id string) (*model.SwapRequest, error) {
	return l.getLocked(ctx, id)
}

func (l *SwapLedger) getLocked(ctx context.Context, id string) (*model.SwapRequest, error) {
	requests, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfRequest(requests, id)
	if i < 0 {
		return nil, apperror.NotFound("swap request", id)
	}
	return &requests[i], nil
}

// SwapRequests returns the whole ledger in insertion order.
func (l *SwapLedger) SwapRequests(ctx context.Context) ([]model.SwapRequest, error) {
	return l.load(ctx)
}

// Received returns requests targeting userID.
func (l *SwapLedger) Received(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	return l.filter(ctx, func(r *model.SwapRequest) bool { return r.TargetID == userID })
}

// Sent returns requests made by userID.
func (l *SwapLedger) Sent(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	return l.filter(ctx, func(r *model.SwapRequest) bool { return r.RequesterID == userID })
}

// CompletedFor returns completed requests userID took part in.
func (l *SwapLedger) CompletedFor(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	return l.filter(ctx, func(r *model.SwapRequest) bool {
		return r.Status == model.StatusCompleted && r.Involves(userID)
	})
}

// PendingFor returns pending requests userID sent or received.
func (l *SwapLedger) PendingFor(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	return l.filter(ctx, func(r *model.SwapRequest) bool {
		return r.Status == model.StatusPending && r.Involves(userID)
	})
}

// Stats counts requests per status for the admin overview.
func (l *SwapLedger) Stats(ctx context.Context) (LedgerStats, error) {
	requests, err := l.load(ctx)
	if err != nil {
		return LedgerStats{}, err
	}
	stats := LedgerStats{Total: len(requests)}
	for _, r := range requests {
		switch r.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusAccepted:
			stats.Accepted++
		case model.StatusRejected:
			stats.Rejected++
		case model.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

func (l *SwapLedger) filter(ctx context.Context, keep func(*model.SwapRequest) bool) ([]model.SwapRequest, error) {
	requests, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.SwapRequest, 0, len(requests))
	for i := range requests {
		if keep(&requests[i]) {
			out = append(out, requests[i])
		}
	}
	return out, nil
}

func (l *SwapLedger) notify(from, to string) {
	if l.observer != nil {
		l.observer.ObserveTransition(from, to)
	}
}

func (l *SwapLedger) load(ctx context.Context) ([]model.SwapRequest, error) {
	var requests []model.SwapRequest
	if _, err := repository.LoadJSON(ctx, l.store, repository.KeyRequests, &requests); err != nil {
		return nil, fmt.Errorf("service/swap: loading ledger: %w", err)
	}
	if requests == nil {
		requests = []model.SwapRequest{}
	}
	return requests, nil
}

func (l *SwapLedger) save(ctx context.Context, requests []model.SwapRequest) error {
	if err := repository.SaveJSON(ctx, l.store, repository.KeyRequests, requests); err != nil {
		l.logger.Error("failed to save ledger", slog.String("error", err.Error()))
		return fmt.Errorf("service/swap: saving ledger: %w", err)
	}
	return nil
}

func indexOfRequest(requests []model.SwapRequest, id string) int {
	for i := range requests {
		if requests[i].ID == id {
			return i
		}
	}
	return -1
}
