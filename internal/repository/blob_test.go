package repository_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/repository"
	"github.com/sakif/skillswap/internal/repository/memory"
)

func sampleRequests() []model.SwapRequest {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rating := 5
	feedback := "great teacher"
	ratedBy := "A"
	return []model.SwapRequest{
		{
			ID: "r1", RequesterID: "A", TargetID: "B",
			RequestedSkillID: "s1", OfferedSkillID: "s2",
			Message: "hi", Status: model.StatusCompleted,
			CreatedAt: now, UpdatedAt: now, CompletedAt: &now,
			Rating: &rating, Feedback: &feedback, RatedBy: &ratedBy,
		},
		{
			ID: "r2", RequesterID: "B", TargetID: "C",
			Status: model.StatusPending, CreatedAt: now, UpdatedAt: now,
		},
	}
}

func TestRoundTrip_SwapRequests(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	in := sampleRequests()

	require.NoError(t, repository.SaveJSON(ctx, store, repository.KeyRequests, in))

	var out []model.SwapRequest
	ok, err := repository.LoadJSON(ctx, store, repository.KeyRequests, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestRoundTrip_Users(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	in := []model.User{{
		ID: "A", Name: "Ada", Email: "ada@example.com", Location: "London",
		SkillsOffered: []model.Skill{{ID: "1", Name: "Go", Description: "services", Category: "Programming"}},
		SkillsWanted:  []model.Skill{{ID: "2", Name: "Guitar", Category: "Music"}},
		Availability:  []string{"weekends"},
		IsPublic:      true, Role: model.RoleAdmin, Rating: 4.5, SwapsCompleted: 2,
		JoinedDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, repository.SaveJSON(ctx, store, repository.KeyUsers, in))

	var out []model.User
	ok, err := repository.LoadJSON(ctx, store, repository.KeyUsers, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestLoadJSON_MissingKey(t *testing.T) {
	var out []model.User
	ok, err := repository.LoadJSON(context.Background(), memory.New(), repository.KeyUsers, &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestDecode_Corruption(t *testing.T) {
	good, err := repository.Encode(sampleRequests())
	require.NoError(t, err)

	tampered := bytes.Replace(good, []byte(`great teacher`), []byte(`awful teacher`), 1)
	require.NotEqual(t, good, tampered)

	badStatus, err := repository.Encode([]map[string]string{{"id": "x", "status": "cancelled"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		blob []byte
	}{
		{"not json", []byte(`{{{`)},
		{"truncated", good[:len(good)/2]},
		{"checksum mismatch", tampered},
		{"wrong version", []byte(`{"v":9,"sum":"","data":[]}`)},
		{"bad checksum hex", []byte(`{"v":1,"sum":"zz","data":[]}`)},
		{"unknown status", badStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []model.SwapRequest
			err := repository.Decode(repository.KeyRequests, tt.blob, &out)
			assert.True(t, errors.Is(err, apperror.ErrCorruptState), "got %v", err)
		})
	}
}

func TestLoadJSON_StoreFailure(t *testing.T) {
	store := memory.New()
	store.FailWith = errors.New("unavailable")

	var out []model.User
	_, err := repository.LoadJSON(context.Background(), store, repository.KeyUsers, &out)
	assert.True(t, errors.Is(err, apperror.ErrPersistence))

	err = repository.SaveJSON(context.Background(), store, repository.KeyUsers, out)
	assert.True(t, errors.Is(err, apperror.ErrPersistence))

	err = repository.RemoveKey(context.Background(), store, repository.KeyUsers)
	assert.True(t, errors.Is(err, apperror.ErrPersistence))
}
