// Package match turns the user directory into a list of swap candidates.
//
// Everything here is a pure function of its inputs: no store, no logger,
// no clock. Handlers and CLI commands load the directory and the current
// user themselves and pass them in.
package match

import (
	"iter"
	"slices"
	"strings"

	"github.com/sakif/skillswap/internal/model"
)

// Categories is the fixed list of skill categories offered by the pickers.
// Skills may carry other categories; the list only seeds the choices.
var Categories = []string{
	"Programming", "Design", "Language", "Music", "Creative", "Business",
	"Marketing", "Writing", "Photography", "Cooking", "Sports", "Teaching",
}

// Availability is the fixed list of availability slots a profile can pick.
var Availability = []string{
	"weekdays-morning", "weekdays-afternoon", "weekdays-evening",
	"weekends-morning", "weekends-afternoon", "weekends-evening",
	"flexible",
}

// Filter narrows the candidate list. Empty fields match everything, and a
// candidate must satisfy every non-empty field.
type Filter struct {
	// Text is matched case-insensitively as a substring of the user's name
	// or of any offered skill's name or description.
	Text string
	// Category must equal the category of at least one offered skill.
	Category string
	// Location must equal the user's location exactly.
	Location string
}

// Candidates yields the public users other than current that pass f, in
// directory order.
//
// The sequence is lazy and can be ranged over any number of times; each
// pass re-reads users. A nil current excludes nobody on identity grounds.
func Candidates(current *model.User, users []model.User, f Filter) iter.Seq[model.User] {
	text := strings.ToLower(f.Text)
	return func(yield func(model.User) bool) {
		for _, u := range users {
			if !eligible(current, &u) || !f.matches(&u, text) {
				continue
			}
			if !yield(u) {
				return
			}
		}
	}
}

// FindCandidates is Candidates collected into a slice.
// It never returns nil, so an empty result encodes as [] in JSON.
func FindCandidates(current *model.User, users []model.User, f Filter) []model.User {
	out := slices.Collect(Candidates(current, users, f))
	if out == nil {
		out = []model.User{}
	}
	return out
}

// Locations lists the distinct non-empty locations of the public users
// other than current, in first-seen order.
func Locations(current *model.User, users []model.User) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for u := range Candidates(current, users, Filter{}) {
		if u.Location == "" {
			continue
		}
		if _, ok := seen[u.Location]; ok {
			continue
		}
		seen[u.Location] = struct{}{}
		out = append(out, u.Location)
	}
	return out
}

func eligible(current, u *model.User) bool {
	if !u.IsPublic {
		return false
	}
	return current == nil || u.ID != current.ID
}

// matches applies the three predicates. lowerText is f.Text already lowered.
func (f Filter) matches(u *model.User, lowerText string) bool {
	if lowerText != "" && !matchesText(u, lowerText) {
		return false
	}
	if f.Category != "" && !slices.ContainsFunc(u.SkillsOffered, func(s model.Skill) bool {
		return s.Category == f.Category
	}) {
		return false
	}
	if f.Location != "" && u.Location != f.Location {
		return false
	}
	return true
}

func matchesText(u *model.User, lowerText string) bool {
	if strings.Contains(strings.ToLower(u.Name), lowerText) {
		return true
	}
	for _, s := range u.SkillsOffered {
		if strings.Contains(strings.ToLower(s.Name), lowerText) ||
			strings.Contains(strings.ToLower(s.Description), lowerText) {
			return true
		}
	}
	return false
}
