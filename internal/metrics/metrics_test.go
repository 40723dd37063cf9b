package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapTransitions(t *testing.T) {
	counter := swapTransitionsTotal.WithLabelValues("pending", "accepted")
	before := testutil.ToFloat64(counter)

	SwapTransitions{}.ObserveTransition("pending", "accepted")
	SwapTransitions{}.ObserveTransition("pending", "accepted")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestObserveRequest(t *testing.T) {
	counter := requestsTotal.WithLabelValues("GET", "/api/users", "200")
	before := testutil.ToFloat64(counter)

	ObserveRequest("GET", "/api/users", "200", 0.01)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRatings(t *testing.T) {
	counter := ratingsTotal.WithLabelValues("4")
	before := testutil.ToFloat64(counter)

	Ratings{}.ObserveRating(4)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler(t *testing.T) {
	Ratings{}.ObserveRating(5)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "skillswap_ratings_total")
}
