package domain

// User represents a users row. Identity is the stable external chat-platform
// id; the core never mints user ids of its own.
type User struct {
	ID             string   `json:"id"`
	Handle         string   `json:"handle"`
	DisplayName    string   `json:"display_name"`
	SkillLevel     *float64 `json:"skill_level,omitempty"`
	Bio            *string  `json:"bio,omitempty"`
	GamesCompleted int      `json:"games_completed"`
	CreatedAt      int64    `json:"created_at"` // epoch seconds
}

// HasSkill reports whether the user has set a skill level. Joining a waitlist
// requires a skill level so the creator can review the request.
func (u *User) HasSkill() bool {
	return u.SkillLevel != nil
}
