package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies an outbound notification event.
type NotificationKind string

const (
	NoteWaitlistRequested NotificationKind = "waitlist.requested"
	NoteWaitlistApproved  NotificationKind = "waitlist.approved"
	NoteWaitlistRejected  NotificationKind = "waitlist.rejected"
	NoteGameFull          NotificationKind = "game.full"
	NotePlayerLeft        NotificationKind = "game.player_left"
	NoteGameCancelled     NotificationKind = "game.cancelled"
	NoteGameReminder      NotificationKind = "game.reminder"
)

// NotificationDraft is a row destined for notification_outbox. The chat
// gateway consumes these off the broker and renders the actual messages;
// the core only says who should hear about what.
type NotificationDraft struct {
	SeqID       int64            `json:"-"`
	EventID     uuid.UUID        `json:"event_id"`
	Kind        NotificationKind `json:"kind"`
	RecipientID string           `json:"recipient_id"`
	GameID      string           `json:"game_id"`
	Payload     json.RawMessage  `json:"payload"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

func newDraft(kind NotificationKind, recipientID, gameID string, payload any) (NotificationDraft, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return NotificationDraft{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return NotificationDraft{
		EventID:     uuid.New(),
		Kind:        kind,
		RecipientID: recipientID,
		GameID:      gameID,
		Payload:     raw,
		OccurredAt:  time.Now(),
	}, nil
}

// NewWaitlistRequestedNote tells the creator that a user asked to join.
func NewWaitlistRequestedNote(game *Game, requester *User) (NotificationDraft, error) {
	return newDraft(NoteWaitlistRequested, game.CreatorID, game.ID, map[string]any{
		"location":                  game.Location,
		"starts_at":                 game.StartsAt,
		"current_players":           game.CurrentPlayers,
		"max_players":               game.MaxPlayers,
		"requester_id":              requester.ID,
		"requester_display_name":    requester.DisplayName,
		"requester_skill_level":     requester.SkillLevel,
		"requester_games_completed": requester.GamesCompleted,
	})
}

// NewWaitlistApprovedNote tells the requester they are in.
func NewWaitlistApprovedNote(game *Game, userID string) (NotificationDraft, error) {
	return newDraft(NoteWaitlistApproved, userID, game.ID, map[string]any{
		"location":  game.Location,
		"starts_at": game.StartsAt,
	})
}

// NewWaitlistRejectedNote tells the requester they were not selected.
func NewWaitlistRejectedNote(game *Game, userID string) (NotificationDraft, error) {
	return newDraft(NoteWaitlistRejected, userID, game.ID, map[string]any{
		"location":  game.Location,
		"starts_at": game.StartsAt,
	})
}

// NewGameFullNote tells the creator the final seat was filled.
func NewGameFullNote(game *Game) (NotificationDraft, error) {
	return newDraft(NoteGameFull, game.CreatorID, game.ID, map[string]any{
		"location":    game.Location,
		"starts_at":   game.StartsAt,
		"max_players": game.MaxPlayers,
	})
}

// NewPlayerLeftNote tells the creator a confirmed player dropped out.
// currentPlayers is the count after the departure.
func NewPlayerLeftNote(game *Game, userID string, currentPlayers int) (NotificationDraft, error) {
	return newDraft(NotePlayerLeft, game.CreatorID, game.ID, map[string]any{
		"location":        game.Location,
		"starts_at":       game.StartsAt,
		"user_id":         userID,
		"current_players": currentPlayers,
		"max_players":     game.MaxPlayers,
	})
}

// NewGameCancelledNote tells a participant their game was cancelled.
func NewGameCancelledNote(game *Game, recipientID string) (NotificationDraft, error) {
	return newDraft(NoteGameCancelled, recipientID, game.ID, map[string]any{
		"location":  game.Location,
		"starts_at": game.StartsAt,
	})
}

// NewGameReminderNote reminds a participant about a soon-starting game.
func NewGameReminderNote(game UpcomingGame, recipientID string) (NotificationDraft, error) {
	return newDraft(NoteGameReminder, recipientID, game.ID, map[string]any{
		"name":      game.Name,
		"location":  game.Location,
		"starts_at": game.StartsAt,
	})
}
