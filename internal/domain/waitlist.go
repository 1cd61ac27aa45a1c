package domain

import "time"

// WaitlistStatus is the review state of a join request.
type WaitlistStatus string

const (
	WaitlistPending  WaitlistStatus = "pending"
	WaitlistApproved WaitlistStatus = "approved"
	WaitlistRejected WaitlistStatus = "rejected"
)

// WaitlistEntry represents a waitlist row. At most one entry may exist per
// (game, user) pair; the unique constraint has no status dimension, so a
// rejected user cannot re-request the same game.
type WaitlistEntry struct {
	ID        int64          `json:"id"`
	GameID    string         `json:"game_id"`
	UserID    string         `json:"user_id"`
	Status    WaitlistStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// WaitlistRequest is a pending entry joined with the requesting user's
// profile fields, for the creator's review list.
type WaitlistRequest struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle"`
	SkillLevel  *float64  `json:"skill_level,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
