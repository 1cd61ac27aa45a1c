package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateSkillLevel(t *testing.T) {
	tests := []struct {
		name    string
		skill   float64
		wantErr bool
	}{
		{"lower bound", 0.0, false},
		{"upper bound", 7.0, false},
		{"mid range", 4.5, false},
		{"half steps", 3.5, false},
		{"below range", -0.5, true},
		{"above range", 7.5, true},
		{"far above", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSkillLevel(tt.skill)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "skill level must be between")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSkillBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
		errMsg   string
	}{
		{"valid range", 3.0, 4.5, false, ""},
		{"equal bounds", 4.0, 4.0, false, ""},
		{"whole scale", 0.0, 7.0, false, ""},
		{"inverted", 5.0, 3.0, true, "exceeds max skill"},
		{"min out of scale", -1.0, 4.0, true, "skill level must be between"},
		{"max out of scale", 3.0, 8.0, true, "skill level must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSkillBounds(tt.min, tt.max)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateMaxPlayers(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"doubles", 4, false},
		{"singles", 2, false},
		{"three", 3, false},
		{"one", 1, true},
		{"zero", 0, true},
		{"five", 5, true},
		{"negative", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxPlayers(tt.n)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	const now = int64(1_700_000_000)

	tests := []struct {
		name     string
		startsAt int64
		endsAt   int64
		wantErr  bool
		errMsg   string
	}{
		{"future game", now + 3600, now + 7200, false, ""},
		{"starts now", now, now + 3600, true, "must be in the future"},
		{"starts in past", now - 60, now + 3600, true, "must be in the future"},
		{"ends before start", now + 7200, now + 3600, true, "after the start"},
		{"zero duration", now + 3600, now + 3600, true, "after the start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.startsAt, tt.endsAt, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatorsCarryValidationCode(t *testing.T) {
	failures := []error{
		ValidateSkillLevel(9.9),
		ValidateSkillBounds(5.0, 3.0),
		ValidateMaxPlayers(7),
		ValidateSchedule(100, 200, 500),
		ValidateCourtCost(-1),
	}

	for _, err := range failures {
		require.Error(t, err)
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Equal(t, 400, appErr.Status)
	}
}

func TestValidateCourtCost(t *testing.T) {
	require.NoError(t, ValidateCourtCost(0))
	require.NoError(t, ValidateCourtCost(2500))
	require.Error(t, ValidateCourtCost(-1))
}

// --- Game Status Tests ---

func TestStatusForCount(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		maxPlayers int
		want       GameStatus
	}{
		{"empty", 0, 4, GameOpen},
		{"creator only", 1, 4, GameOpen},
		{"one short", 3, 4, GameOpen},
		{"at capacity", 4, 4, GameFull},
		{"over capacity", 5, 4, GameFull},
		{"singles full", 2, 2, GameFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForCount(tt.count, tt.maxPlayers))
		})
	}
}

func TestSpotsLeft(t *testing.T) {
	g := Game{MaxPlayers: 4, CurrentPlayers: 1}
	assert.Equal(t, 3, g.SpotsLeft())

	g.CurrentPlayers = 4
	assert.Equal(t, 0, g.SpotsLeft())

	g.CurrentPlayers = 5
	assert.Equal(t, 0, g.SpotsLeft())
}

func TestUserHasSkill(t *testing.T) {
	u := User{}
	assert.False(t, u.HasSkill())

	skill := 3.5
	u.SkillLevel = &skill
	assert.True(t, u.HasSkill())
}

// --- AppError Tests ---

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", ErrNotFound("game", "abc"), "NOT_FOUND", 404},
		{"conflict", ErrConflict("already a participant"), "CONFLICT", 409},
		{"validation", ErrValidation("bad skill"), "VALIDATION_ERROR", 400},
		{"internal", ErrInternal("insert game", errors.New("boom")), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrInternal("find game", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
}

// --- Notification Draft Tests ---

func TestWaitlistRequestedNoteTargetsCreator(t *testing.T) {
	skill := 4.0
	game := &Game{ID: "g1", CreatorID: "creator", Location: "Court 5", StartsAt: 1000, CurrentPlayers: 2, MaxPlayers: 4}
	requester := &User{ID: "u1", DisplayName: "Ana", SkillLevel: &skill, GamesCompleted: 12}

	note, err := NewWaitlistRequestedNote(game, requester)
	require.NoError(t, err)

	assert.Equal(t, NoteWaitlistRequested, note.Kind)
	assert.Equal(t, "creator", note.RecipientID)
	assert.Equal(t, "g1", note.GameID)
	assert.NotEqual(t, [16]byte{}, [16]byte(note.EventID))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(note.Payload, &payload))
	assert.Equal(t, "u1", payload["requester_id"])
	assert.Equal(t, "Ana", payload["requester_display_name"])
	assert.Equal(t, 4.0, payload["requester_skill_level"])
	assert.Equal(t, float64(12), payload["requester_games_completed"])
}

func TestApprovalAndRejectionNotesTargetRequester(t *testing.T) {
	game := &Game{ID: "g1", CreatorID: "creator", Location: "Court 5", StartsAt: 1000}

	approved, err := NewWaitlistApprovedNote(game, "u1")
	require.NoError(t, err)
	assert.Equal(t, NoteWaitlistApproved, approved.Kind)
	assert.Equal(t, "u1", approved.RecipientID)

	rejected, err := NewWaitlistRejectedNote(game, "u1")
	require.NoError(t, err)
	assert.Equal(t, NoteWaitlistRejected, rejected.Kind)
	assert.Equal(t, "u1", rejected.RecipientID)
}

func TestDraftEncodingFailureSurfaces(t *testing.T) {
	// NaN has no JSON encoding; the failure must reach the caller instead of
	// producing an empty payload row.
	nan := math.NaN()
	game := &Game{ID: "g1", CreatorID: "creator", Location: "Court 5"}
	_, err := NewWaitlistRequestedNote(game, &User{ID: "u1", SkillLevel: &nan})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload")
}

func TestLifecycleNotes(t *testing.T) {
	game := &Game{ID: "g1", CreatorID: "creator", Location: "Court 5", StartsAt: 1000, MaxPlayers: 4}

	full, err := NewGameFullNote(game)
	require.NoError(t, err)
	assert.Equal(t, NoteGameFull, full.Kind)
	assert.Equal(t, "creator", full.RecipientID)

	left, err := NewPlayerLeftNote(game, "u2", 2)
	require.NoError(t, err)
	assert.Equal(t, NotePlayerLeft, left.Kind)
	assert.Equal(t, "creator", left.RecipientID)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(left.Payload, &payload))
	assert.Equal(t, "u2", payload["user_id"])
	assert.Equal(t, float64(2), payload["current_players"])

	cancelled, err := NewGameCancelledNote(game, "u3")
	require.NoError(t, err)
	assert.Equal(t, NoteGameCancelled, cancelled.Kind)
	assert.Equal(t, "u3", cancelled.RecipientID)

	reminder, err := NewGameReminderNote(UpcomingGame{ID: "g1", Name: "Friday doubles", Location: "Court 5", StartsAt: 1000}, "u4")
	require.NoError(t, err)
	assert.Equal(t, NoteGameReminder, reminder.Kind)
	assert.Equal(t, "u4", reminder.RecipientID)
}
