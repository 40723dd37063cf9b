// Package model defines the data structures used throughout the application.
package model

import "time"

// Role gates access to the administrative views. It is a client-trusted flag:
// nothing verifies it beyond the process that stored it.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a marketplace member profile.
//
// WHY Rating float64?
// Rating is the mean of the 1-5 stars a user has received, so it is
// fractional (e.g. 4.7). SwapsCompleted counts finished swaps the user took
// part in on either side.
//
// WHY IsPublic?
// Private profiles stay in the directory (they can still trade with people
// who already know their id) but are never surfaced by discovery.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Location       string    `json:"location"`
	ProfilePhoto   string    `json:"profilePhoto"`
	SkillsOffered  []Skill   `json:"skillsOffered"`
	SkillsWanted   []Skill   `json:"skillsWanted"`
	Availability   []string  `json:"availability"`
	IsPublic       bool      `json:"isPublic"`
	Role           Role      `json:"role"`
	Rating         float64   `json:"rating"`
	SwapsCompleted int       `json:"swapsCompleted"`
	JoinedDate     time.Time `json:"joinedDate"`
}

// IsAdmin reports whether the user may open the admin views.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Skills returns the list selected by kind.
func (u *User) Skills(kind SkillKind) []Skill {
	if kind == SkillsWanted {
		return u.SkillsWanted
	}
	return u.SkillsOffered
}

// SetSkills replaces the list selected by kind.
func (u *User) SetSkills(kind SkillKind, skills []Skill) {
	if kind == SkillsWanted {
		u.SkillsWanted = skills
		return
	}
	u.SkillsOffered = skills
}
