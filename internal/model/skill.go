package model

// Skill is something a user can teach (offered) or wants to learn (wanted).
//
// The ID is assigned by whoever creates the skill. It only has to be unique
// inside one user's list, so two users may both own a skill with ID "1".
// Skills are never edited in place: a change is a removal plus a re-add.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SkillKind selects one of the two skill lists on a User.
type SkillKind string

const (
	SkillsOffered SkillKind = "offered"
	SkillsWanted  SkillKind = "wanted"
)

// Valid reports whether k names one of the two skill lists.
func (k SkillKind) Valid() bool {
	return k == SkillsOffered || k == SkillsWanted
}
