package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/skillswap/internal/model"
)

func directory() []model.User {
	return []model.User{
		{
			ID: "ada", Name: "Ada Lovelace", Location: "London", IsPublic: true,
			SkillsOffered: []model.Skill{{ID: "s1", Name: "Go", Description: "concurrency and channels", Category: "Programming"}},
		},
		{
			ID: "bob", Name: "Bob Marley", Location: "Kingston", IsPublic: true,
			SkillsOffered: []model.Skill{{ID: "s2", Name: "Guitar", Description: "reggae rhythm", Category: "Music"}},
		},
		{
			ID: "carol", Name: "Carol", Location: "London", IsPublic: false,
			SkillsOffered: []model.Skill{{ID: "s3", Name: "Go", Category: "Programming"}},
		},
		{
			ID: "dave", Name: "Dave", Location: "Dhaka", IsPublic: true,
			SkillsOffered: []model.Skill{
				{ID: "s4", Name: "Bengali", Description: "conversational", Category: "Language"},
				{ID: "s5", Name: "Photo editing", Description: "lightroom", Category: "Photography"},
			},
			SkillsWanted: []model.Skill{{ID: "s6", Name: "Guitar", Category: "Music"}},
		},
		{
			ID: "erin", Name: "Erin", Location: "London", IsPublic: true,
		},
	}
}

func ids(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestFindCandidates(t *testing.T) {
	users := directory()
	current := &users[0] // ada

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"bob", "dave", "erin"}},
		{"text matches name", Filter{Text: "MARLEY"}, []string{"bob"}},
		{"text matches skill name", Filter{Text: "photo"}, []string{"dave"}},
		{"text matches skill description", Filter{Text: "Reggae"}, []string{"bob"}},
		{"text ignores wanted skills", Filter{Text: "guitar"}, []string{"bob"}},
		{"category", Filter{Category: "Language"}, []string{"dave"}},
		{"category is exact", Filter{Category: "music"}, []string{}},
		{"location", Filter{Location: "London"}, []string{"erin"}},
		{"predicates are ANDed", Filter{Text: "e", Location: "Dhaka"}, []string{"dave"}},
		{"no match", Filter{Text: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCandidates(current, users, tt.filter)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFindCandidates_NeverSelfOrPrivate(t *testing.T) {
	users := directory()
	for i := range users {
		current := &users[i]
		for _, f := range []Filter{{}, {Text: "go"}, {Location: "London"}, {Category: "Programming"}} {
			for _, u := range FindCandidates(current, users, f) {
				assert.NotEqual(t, current.ID, u.ID)
				assert.True(t, u.IsPublic, "%s is private", u.ID)
			}
		}
	}
}

func TestFindCandidates_NoCurrentUser(t *testing.T) {
	got := FindCandidates(nil, directory(), Filter{})
	assert.Equal(t, []string{"ada", "bob", "dave", "erin"}, ids(got))
}

func TestCandidates_Restartable(t *testing.T) {
	users := directory()
	seq := Candidates(&users[1], users, Filter{Location: "London"})

	var first, second []string
	for u := range seq {
		first = append(first, u.ID)
	}
	for u := range seq {
		second = append(second, u.ID)
	}
	assert.Equal(t, []string{"ada", "erin"}, first)
	assert.Equal(t, first, second)
}

func TestCandidates_StopsEarly(t *testing.T) {
	users := directory()
	var got []string
	for u := range Candidates(nil, users, Filter{}) {
		got = append(got, u.ID)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"ada", "bob"}, got)
}

func TestLocations(t *testing.T) {
	users := directory()
	users = append(users, model.User{ID: "nowhere", IsPublic: true})

	assert.Equal(t, []string{"Kingston", "Dhaka", "London"}, Locations(&users[0], users))
	assert.Equal(t, []string{"London", "Kingston", "Dhaka"}, Locations(nil, users))
}
