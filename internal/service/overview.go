package service

import "context"

// Overview is the admin summary of the directory and the ledger.
type Overview struct {
	Users       int         `json:"users"`
	PublicUsers int         `json:"publicUsers"`
	Swaps       LedgerStats `json:"swaps"`
}

// BuildOverview counts users and swap requests. It reads both stores but
// writes neither.
func BuildOverview(ctx context.Context, identity *IdentityStore, ledger *SwapLedger) (Overview, error) {
	users, err := identity.Users(ctx)
	if err != nil {
		return Overview{}, err
	}
	swaps, err := ledger.Stats(ctx)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{Users: len(users), Swaps: swaps}
	for _, u := range users {
		if u.IsPublic {
			out.PublicUsers++
		}
	}
	return out, nil
}

// Dashboard is one user's summary: what they list, what they finished and
// what is still waiting on either side.
type Dashboard struct {
	SkillsOffered   int     `json:"skillsOffered"`
	SkillsWanted    int     `json:"skillsWanted"`
	SwapsCompleted  int     `json:"swapsCompleted"`
	Rating          float64 `json:"rating"`
	PendingRequests int     `json:"pendingRequests"`
}

// BuildDashboard summarizes userID's profile and open requests.
// SwapsCompleted and Rating are the profile's stored aggregates, the same
// numbers GET /api/me shows.
func BuildDashboard(ctx context.Context, identity *IdentityStore, ledger *SwapLedger, userID string) (Dashboard, error) {
	user, err := identity.GetUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	pending, err := ledger.PendingFor(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		SkillsOffered:   len(user.SkillsOffered),
		SkillsWanted:    len(user.SkillsWanted),
		SwapsCompleted:  user.SwapsCompleted,
		Rating:          user.Rating,
		PendingRequests: len(pending),
	}, nil
}
