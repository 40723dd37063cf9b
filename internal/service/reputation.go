package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/sakif/skillswap/internal/model"
)

// RatingObserver is told about every rating the ledger commits. The metrics
// layer implements it; nil means nobody listens.
type RatingObserver interface {
	ObserveRating(stars int)
}

// Reputation completes and rates swaps and keeps both parties' aggregate
// Rating and SwapsCompleted in step with the ledger.
//
// The ledger and the directory stay independent stores; Reputation is the
// only place that reads one and writes the other. With apply=false it only
// records the outcome on the swap and leaves profiles untouched.
//
// ORDER OF WRITES:
// The ledger commits first. A profile refresh that fails afterwards is
// logged and the committed swap is still returned, because retrying the
// transition would be refused. The next Refresh of that user repairs the
// aggregates.
type Reputation struct {
	ledger   *SwapLedger
	identity *IdentityStore
	apply    bool
	observer RatingObserver
	logger   *slog.Logger
}

// NewReputation creates a Reputation.
func NewReputation(ledger *SwapLedger, identity *IdentityStore, apply bool, logger *slog.Logger) *Reputation {
	return &Reputation{
		ledger:   ledger,
		identity: identity,
		apply:    apply,
		logger:   logger,
	}
}

// WithRatingObserver sets the observer told about committed ratings.
func (r *Reputation) WithRatingObserver(o RatingObserver) *Reputation {
	r.observer = o
	return r
}

// Complete marks an accepted swap completed, then recomputes both parties'
// aggregates.
func (r *Reputation) Complete(ctx context.Context, swapID, actorID string) (*model.SwapRequest, error) {
	swap, err := r.ledger.Complete(ctx, swapID, actorID)
	if err != nil {
		return nil, err
	}
	r.refreshParties(ctx, swap)
	return swap, nil
}

// Rate records actorID's rating on the swap, then recomputes both parties'
// aggregates. A party missing from the directory is skipped: the rating
// stays on the swap and the weak reference is left alone.
func (r *Reputation) Rate(ctx context.Context, swapID, actorID string, rating int, feedback string) (*model.SwapRequest, error) {
	swap, err := r.ledger.Rate(ctx, swapID, actorID, rating, feedback)
	if err != nil {
		return nil, err
	}
	if r.observer != nil && swap.Rating != nil {
		r.observer.ObserveRating(*swap.Rating)
	}
	r.refreshParties(ctx, swap)
	return swap, nil
}

// refreshParties runs Refresh for the requester and the target. Failures are
// logged, not returned: the ledger write they follow is already committed.
func (r *Reputation) refreshParties(ctx context.Context, swap *model.SwapRequest) {
	if !r.apply {
		return
	}
	for _, userID := range []string{swap.RequesterID, swap.TargetID} {
		err := r.Refresh(ctx, userID)
		switch {
		case err == nil:
		case isNotFound(err):
			r.logger.Warn("swap party not in directory",
				slog.String("swapID", swap.ID),
				slog.String("userID", userID),
			)
		default:
			r.logger.Warn("reputation refresh failed after commit",
				slog.String("swapID", swap.ID),
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Refresh recomputes userID's aggregates from the ledger and stores them.
// Returns apperror.ErrNotFound if userID is not in the directory.
func (r *Reputation) Refresh(ctx context.Context, userID string) error {
	user, err := r.identity.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	requests, err := r.ledger.SwapRequests(ctx)
	if err != nil {
		return err
	}

	user.Rating, user.SwapsCompleted = Aggregate(requests, userID)
	if err := r.identity.PutUser(ctx, *user); err != nil {
		return err
	}

	r.logger.Info("reputation updated",
		slog.String("userID", userID),
		slog.Float64("rating", user.Rating),
		slog.Int("swapsCompleted", user.SwapsCompleted),
	)
	return nil
}

// Aggregate computes a user's reputation from the ledger.
//
// rating is the mean of every rating the user received (ratings left by the
// other party on completed swaps), rounded to one decimal; 0 when none.
// completed counts completed swaps the user took part in on either side.
func Aggregate(requests []model.SwapRequest, userID string) (rating float64, completed int) {
	sum, n := 0, 0
	for i := range requests {
		req := &requests[i]
		if req.Status != model.StatusCompleted || !req.Involves(userID) {
			continue
		}
		completed++
		if req.Rated() && req.RatedBy != nil && *req.RatedBy != userID {
			sum += *req.Rating
			n++
		}
	}
	if n == 0 {
		return 0, completed
	}
	return math.Round(float64(sum)/float64(n)*10) / 10, completed
}
