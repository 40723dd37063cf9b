package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeClock hands out times the test controls, so UpdatedAt ordering can be
// checked without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingObserver remembers every transition it is told about.
type recordingObserver struct {
	seen []string
}

func (o *recordingObserver) ObserveTransition(from, to string) {
	o.seen = append(o.seen, from+"->"+to)
}

// recordingRatings remembers every rating it is told about.
type recordingRatings struct {
	stars []int
}

func (o *recordingRatings) ObserveRating(stars int) {
	o.stars = append(o.stars, stars)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testStores bundles the services wired onto one memory store, the way the
// composition root wires them onto one backend.
type testStores struct {
	store    *memory.Store
	clock    *fakeClock
	identity *IdentityStore
	ledger   *SwapLedger
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	store := memory.New()
	clock := newFakeClock()
	logger := newTestLogger()

	identity := NewIdentityStore(store, "admin@skillswap.test", logger)
	identity.now = clock.now
	ledger := NewSwapLedger(store, logger)
	ledger.now = clock.now

	return &testStores{store: store, clock: clock, identity: identity, ledger: ledger}
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("service-test-secret-32-chars!!!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}
