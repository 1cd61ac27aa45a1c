package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/voro/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// Upsert inserts a user or replaces the identity fields of an existing row.
	// Skill, bio and games_completed survive a re-registration.
	Upsert(ctx context.Context, db DBTX, user *domain.User) error

	// FindByID returns a user by external platform id, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error)

	// UpdateSkill, UpdateDisplayName and UpdateBio are unconditional updates;
	// an absent id is a no-op, not an error.
	UpdateSkill(ctx context.Context, db DBTX, id string, skill float64) error
	UpdateDisplayName(ctx context.Context, db DBTX, id, displayName string) error
	UpdateBio(ctx context.Context, db DBTX, id, bio string) error

	// Delete removes the user row only. Cascading removal of participant and
	// waitlist rows is composed by the service inside one transaction.
	Delete(ctx context.Context, db DBTX, id string) error
}

// GameRepository provides access to games.
type GameRepository interface {
	// Insert creates the game row. The creator's participant row is inserted
	// by the service in the same transaction.
	Insert(ctx context.Context, db DBTX, game *domain.Game) error

	// FindByID returns a game by id, or nil if absent. The participant list
	// is not populated; see ParticipantRepository.
	FindByID(ctx context.Context, db DBTX, id string) (*domain.Game, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns
	// the game. Every counter/status mutation starts with this.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Game, error)

	// ListOpen returns open games starting strictly after now (epoch seconds),
	// ordered by start time ascending.
	ListOpen(ctx context.Context, db DBTX, now int64) ([]domain.Game, error)

	// ListByParticipant returns all games (open or full) where the user holds
	// a participant row, ordered by start time.
	ListByParticipant(ctx context.Context, db DBTX, userID string) ([]domain.Game, error)

	// SetPlayerCount writes current_players and status together. The count is
	// always taken from game_players inside the calling transaction.
	SetPlayerCount(ctx context.Context, tx pgx.Tx, id string, count int, status domain.GameStatus) error

	// SetGroupChat records the external group-channel reference.
	SetGroupChat(ctx context.Context, db DBTX, id, groupChatID string) error

	// Delete removes the game row only; waitlist and participant rows are
	// removed by the service in the same transaction.
	Delete(ctx context.Context, db DBTX, id string) error

	// ListStartingBetween returns games with start time in [from, to] (epoch
	// seconds, status open or full), each with its player id/name pairs.
	ListStartingBetween(ctx context.Context, db DBTX, from, to int64) ([]domain.UpcomingGame, error)
}

// ParticipantRepository provides access to game_players.
type ParticipantRepository interface {
	// Add inserts a participant row. A duplicate (game, user) pair returns
	// domain.ErrConflict.
	Add(ctx context.Context, db DBTX, gameID, userID string) error

	// Remove deletes a participant row and reports whether one existed.
	Remove(ctx context.Context, db DBTX, gameID, userID string) (bool, error)

	// Count returns the live participant-row count for a game.
	Count(ctx context.Context, db DBTX, gameID string) (int, error)

	// IDsByGame returns participant ids keyed by game id for the given games.
	IDsByGame(ctx context.Context, db DBTX, gameIDs []string) (map[string][]string, error)

	// GameIDsByUser returns the games the user currently participates in.
	GameIDsByUser(ctx context.Context, db DBTX, userID string) ([]string, error)

	// DeleteByGame removes every participant row for a game.
	DeleteByGame(ctx context.Context, db DBTX, gameID string) error
}

// WaitlistRepository provides access to waitlist.
type WaitlistRepository interface {
	// Add inserts a pending entry. A second entry for the same (game, user)
	// pair returns domain.ErrConflict regardless of the first entry's status.
	Add(ctx context.Context, db DBTX, gameID, userID string) error

	// Find returns the entry for (game, user), or nil if absent.
	Find(ctx context.Context, db DBTX, gameID, userID string) (*domain.WaitlistEntry, error)

	// ListPending returns pending requests joined with the requesting users'
	// profile fields, ordered by request time.
	ListPending(ctx context.Context, db DBTX, gameID string) ([]domain.WaitlistRequest, error)

	// Review flips a pending entry to the given status and reports whether a
	// pending entry existed. Entries already reviewed are left untouched.
	Review(ctx context.Context, db DBTX, gameID, userID string, status domain.WaitlistStatus) (bool, error)

	// DeleteByGame and DeleteByUser remove entries wholesale for cascades.
	DeleteByGame(ctx context.Context, db DBTX, gameID string) error
	DeleteByUser(ctx context.Context, db DBTX, userID string) error
}

// OutboxRepository provides access to notification_outbox.
type OutboxRepository interface {
	// Insert writes a notification event, normally within the same
	// transaction as the state change it announces.
	Insert(ctx context.Context, db DBTX, draft domain.NotificationDraft) error

	// FetchUnpublished returns unpublished events for the dispatcher.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.NotificationDraft, error)

	// MarkPublished removes events that reached the broker.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
