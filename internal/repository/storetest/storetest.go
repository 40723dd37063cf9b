// Package storetest holds the behaviour every repository.Store backend
// must share. Each backend's tests call Run with its own constructor.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/skillswap/internal/repository"
)

// Run exercises the Store contract against stores produced by newStore.
// newStore must return an empty store and register its own cleanup.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing key is first run", func(t *testing.T) {
		s := newStore(t)
		blob, ok, err := s.Load(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, blob)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, repository.KeyUsers, []byte(`[1,2,3]`)))

		blob, ok, err := s.Load(ctx, repository.KeyUsers)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[1,2,3]`, string(blob))
	})

	t.Run("save fully overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, repository.KeyRequests, []byte(`a much longer first value`)))
		require.NoError(t, s.Save(ctx, repository.KeyRequests, []byte(`short`)))

		blob, ok, err := s.Load(ctx, repository.KeyRequests)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `short`, string(blob))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, repository.KeyCurrentUser, []byte(`me`)))
		require.NoError(t, s.Save(ctx, repository.KeyUsers, []byte(`everyone`)))

		blob, _, err := s.Load(ctx, repository.KeyCurrentUser)
		require.NoError(t, err)
		assert.Equal(t, `me`, string(blob))
	})

	t.Run("remove deletes and is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, repository.KeyCurrentUser, []byte(`me`)))
		require.NoError(t, s.Remove(ctx, repository.KeyCurrentUser))
		require.NoError(t, s.Remove(ctx, repository.KeyCurrentUser))

		_, ok, err := s.Load(ctx, repository.KeyCurrentUser)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("typed round trip through the blob codec", func(t *testing.T) {
		s := newStore(t)
		in := map[string][]string{"u1": {"go", "guitar"}}
		require.NoError(t, repository.SaveJSON(ctx, s, repository.KeyUsers, in))

		var out map[string][]string
		ok, err := repository.LoadJSON(ctx, s, repository.KeyUsers, &out)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, in, out)
	})
}
