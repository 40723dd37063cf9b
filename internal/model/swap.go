package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SwapStatus is the lifecycle state of a SwapRequest.
//
// Only the four declared values are reachable: UnmarshalJSON rejects
// anything else, so a corrupt or hand-edited ledger cannot smuggle in
// a fifth state.
type SwapStatus string

const (
	StatusPending   SwapStatus = "pending"
	StatusAccepted  SwapStatus = "accepted"
	StatusRejected  SwapStatus = "rejected"
	StatusCompleted SwapStatus = "completed"
)

// Valid reports whether s is one of the four lifecycle states.
func (s SwapStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further status change is possible from s.
func (s SwapStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

func (s *SwapStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	status := SwapStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("model: unknown swap status %q", raw)
	}
	*s = status
	return nil
}

// transitions is the status lifecycle. Cancellation is not listed: a
// cancelled request is removed from the ledger rather than moved to a state.
var transitions = map[SwapStatus][]SwapStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to SwapStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SwapRequest is one bilateral skill swap, tracked from proposal to rating.
//
// RequesterID and TargetID are weak references to User ids: nothing checks
// that the users exist, and a request may outlive the profiles it names.
// The pointer fields stay nil until the matching lifecycle step happens.
type SwapRequest struct {
	ID               string     `json:"id"`
	RequesterID      string     `json:"requesterId"`
	TargetID         string     `json:"targetId"`
	RequestedSkillID string     `json:"requestedSkillId"`
	OfferedSkillID   string     `json:"offeredSkillId"`
	Message          string     `json:"message"`
	Status           SwapStatus `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Rating           *int       `json:"rating,omitempty"`
	Feedback         *string    `json:"feedback,omitempty"`
	RatedBy          *string    `json:"ratedBy,omitempty"`
}

// Involves reports whether userID is the requester or the target.
func (r *SwapRequest) Involves(userID string) bool {
	return userID != "" && (r.RequesterID == userID || r.TargetID == userID)
}

// Counterpart returns the other party's id, or "" if userID is not a party.
func (r *SwapRequest) Counterpart(userID string) string {
	switch userID {
	case r.RequesterID:
		return r.TargetID
	case r.TargetID:
		return r.RequesterID
	}
	return ""
}

// Rated reports whether a rating has been attached.
func (r *SwapRequest) Rated() bool {
	return r.Rating != nil
}
