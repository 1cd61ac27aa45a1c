package domain

// GameStatus is the capacity state of a game. A cancelled game is deleted
// outright rather than marked.
type GameStatus string

const (
	GameOpen GameStatus = "open"
	GameFull GameStatus = "full"
)

// Game represents a games row. ID is a random 128-bit identifier rendered as
// a uuid string. CourtCostCents is the total court cost in integer cents
// (numeric(12,0)).
type Game struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	CreatorID      string     `json:"creator_id"`
	Location       string     `json:"location"`
	StartsAt       int64      `json:"starts_at"` // epoch seconds
	EndsAt         int64      `json:"ends_at"`   // epoch seconds
	CourtCostCents int64      `json:"court_cost_cents"`
	MinSkill       float64    `json:"min_skill"`
	MaxSkill       float64    `json:"max_skill"`
	MaxPlayers     int        `json:"max_players"`
	CurrentPlayers int        `json:"current_players"`
	Status         GameStatus `json:"status"`
	GroupChatID    *string    `json:"group_chat_id,omitempty"`
	CreatedAt      int64      `json:"created_at"` // epoch seconds

	// PlayerIDs is the confirmed participant list, populated on reads.
	// It is derived from game_players, never stored on the games row.
	PlayerIDs []string `json:"player_ids,omitempty"`
}

// StatusForCount returns the status a game must hold for a given participant
// count. current_players and status are always written together from a count
// taken inside the same transaction.
func StatusForCount(count, maxPlayers int) GameStatus {
	if count >= maxPlayers {
		return GameFull
	}
	return GameOpen
}

// SpotsLeft returns the number of unfilled seats.
func (g *Game) SpotsLeft() int {
	if n := g.MaxPlayers - g.CurrentPlayers; n > 0 {
		return n
	}
	return 0
}

// GamePlayer is a (user id, display name) pair attached to an upcoming game,
// used to address reminder notifications.
type GamePlayer struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// UpcomingGame is a game inside the reminder lookahead window together with
// its confirmed players.
type UpcomingGame struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Location  string       `json:"location"`
	StartsAt  int64        `json:"starts_at"`
	CreatorID string       `json:"creator_id"`
	Players   []GamePlayer `json:"players"`
}
