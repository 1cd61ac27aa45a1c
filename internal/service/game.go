package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/repository"
)

// GameService orchestrates the game lifecycle: creation, waitlist joins,
// approval and rejection, departures and cancellation. Every multi-statement
// operation runs inside a single transaction, and counter/status writes are
// always derived from a participant count taken under a row lock on the game.
type GameService struct {
	pool         *pgxpool.Pool
	games        repository.GameRepository
	participants repository.ParticipantRepository
	waitlist     repository.WaitlistRepository
	users        repository.UserRepository
	outbox       repository.OutboxRepository
	logger       *slog.Logger
}

// NewGameService creates a new GameService.
func NewGameService(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	participants repository.ParticipantRepository,
	waitlist repository.WaitlistRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		pool:         pool,
		games:        games,
		participants: participants,
		waitlist:     waitlist,
		users:        users,
		outbox:       outbox,
		logger:       logger,
	}
}

// CreateGameInput holds the fields for a new game. Inputs are assumed
// validated by the command layer (domain validators).
type CreateGameInput struct {
	CreatorID      string  `json:"creator_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	StartsAt       int64   `json:"starts_at"`
	EndsAt         int64   `json:"ends_at"`
	CourtCostCents int64   `json:"court_cost_cents"`
	MinSkill       float64 `json:"min_skill"`
	MaxSkill       float64 `json:"max_skill"`
	MaxPlayers     int     `json:"max_players"`
}

// Create inserts a game with the creator pre-seated as its first participant.
// Both rows land in one transaction: either both exist or neither does.
func (s *GameService) Create(ctx context.Context, input CreateGameInput) (*domain.Game, error) {
	creator, err := s.users.FindByID(ctx, s.pool, input.CreatorID)
	if err != nil {
		return nil, domain.ErrInternal("find creator", err)
	}
	if creator == nil {
		return nil, domain.ErrNotFound("user", input.CreatorID)
	}

	game := &domain.Game{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Description:    input.Description,
		CreatorID:      input.CreatorID,
		Location:       input.Location,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		CourtCostCents: input.CourtCostCents,
		MinSkill:       input.MinSkill,
		MaxSkill:       input.MaxSkill,
		MaxPlayers:     input.MaxPlayers,
		CurrentPlayers: 1,
		Status:         domain.GameOpen,
		CreatedAt:      time.Now().Unix(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.games.Insert(ctx, tx, game); err != nil {
		return nil, domain.ErrInternal("insert game", err)
	}
	if err := s.participants.Add(ctx, tx, game.ID, input.CreatorID); err != nil {
		return nil, domain.ErrInternal("seat creator", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	game.PlayerIDs = []string{input.CreatorID}
	s.logger.Info("game created", "game_id", game.ID, "creator_id", input.CreatorID, "max_players", game.MaxPlayers)
	return game, nil
}

// Get returns a game annotated with its participant id list.
func (s *GameService) Get(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.games.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", id)
	}
	if err := s.annotatePlayers(ctx, []*domain.Game{game}); err != nil {
		return nil, err
	}
	return game, nil
}

// ListOpen returns open games starting in the future, ordered by start time,
// each annotated with its participant id list.
func (s *GameService) ListOpen(ctx context.Context) ([]domain.Game, error) {
	games, err := s.games.ListOpen(ctx, s.pool, time.Now().Unix())
	if err != nil {
		return nil, domain.ErrInternal("list open games", err)
	}
	if err := s.annotateSlice(ctx, games); err != nil {
		return nil, err
	}
	return games, nil
}

// ListForUser returns every game (open or full) the user participates in.
func (s *GameService) ListForUser(ctx context.Context, userID string) ([]domain.Game, error) {
	games, err := s.games.ListByParticipant(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("list user games", err)
	}
	if err := s.annotateSlice(ctx, games); err != nil {
		return nil, err
	}
	return games, nil
}

// JoinWaitlist files a pending join request. The game must exist and still be
// open, and the requester must exist with a skill level set. A duplicate
// request declines with CONFLICT.
func (s *GameService) JoinWaitlist(ctx context.Context, gameID, userID string) error {
	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return domain.ErrInternal("find game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID)
	}
	if game.Status != domain.GameOpen {
		return domain.ErrConflict("game is no longer open to new joins")
	}

	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return domain.ErrInternal("find user", err)
	}
	if user == nil {
		return domain.ErrNotFound("user", userID)
	}
	if !user.HasSkill() {
		return domain.ErrValidation("set a skill level before joining a waitlist")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.waitlist.Add(ctx, tx, gameID, userID); err != nil {
		return asAppError(err, "add to waitlist")
	}
	note, err := domain.NewWaitlistRequestedNote(game, user)
	if err != nil {
		return domain.ErrInternal("build notification", err)
	}
	if err := s.outbox.Insert(ctx, tx, note); err != nil {
		return domain.ErrInternal("queue notification", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// Approve confirms a pending waitlist entry: the entry flips to approved, a
// participant row is inserted, and the game's counter and status are
// recomputed from the participant relation under the game's row lock. The
// whole approval succeeds or fails as one unit.
func (s *GameService) Approve(ctx context.Context, gameID, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	game, err := s.games.LockForUpdate(ctx, tx, gameID)
	if err != nil {
		return domain.ErrInternal("lock game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID)
	}
	if game.Status != domain.GameOpen {
		return domain.ErrConflict("game is already full")
	}

	reviewed, err := s.waitlist.Review(ctx, tx, gameID, userID, domain.WaitlistApproved)
	if err != nil {
		return domain.ErrInternal("approve waitlist entry", err)
	}
	if !reviewed {
		return domain.ErrNotFound("pending waitlist entry", userID)
	}

	if err := s.participants.Add(ctx, tx, gameID, userID); err != nil {
		return asAppError(err, "add participant")
	}

	count, err := s.participants.Count(ctx, tx, gameID)
	if err != nil {
		return domain.ErrInternal("count participants", err)
	}
	status := domain.StatusForCount(count, game.MaxPlayers)
	if err := s.games.SetPlayerCount(ctx, tx, gameID, count, status); err != nil {
		return domain.ErrInternal("update player count", err)
	}

	note, err := domain.NewWaitlistApprovedNote(game, userID)
	if err != nil {
		return domain.ErrInternal("build notification", err)
	}
	if err := s.outbox.Insert(ctx, tx, note); err != nil {
		return domain.ErrInternal("queue notification", err)
	}
	if status == domain.GameFull {
		fullNote, err := domain.NewGameFullNote(game)
		if err != nil {
			return domain.ErrInternal("build notification", err)
		}
		if err := s.outbox.Insert(ctx, tx, fullNote); err != nil {
			return domain.ErrInternal("queue notification", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("waitlist approved", "game_id", gameID, "user_id", userID, "players", count, "status", status)
	return nil
}

// Reject flips a pending waitlist entry to rejected. Participants and
// counters are untouched.
func (s *GameService) Reject(ctx context.Context, gameID, userID string) error {
	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return domain.ErrInternal("find game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	reviewed, err := s.waitlist.Review(ctx, tx, gameID, userID, domain.WaitlistRejected)
	if err != nil {
		return domain.ErrInternal("reject waitlist entry", err)
	}
	if !reviewed {
		return domain.ErrNotFound("pending waitlist entry", userID)
	}
	note, err := domain.NewWaitlistRejectedNote(game, userID)
	if err != nil {
		return domain.ErrInternal("build notification", err)
	}
	if err := s.outbox.Insert(ctx, tx, note); err != nil {
		return domain.ErrInternal("queue notification", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// Leave removes a confirmed participant. The counter is recomputed and a
// full game reopens. Leaving a game one is not a participant of declines
// with NOT_FOUND; the creator cannot leave their own game, only cancel it.
func (s *GameService) Leave(ctx context.Context, gameID, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	game, err := s.games.LockForUpdate(ctx, tx, gameID)
	if err != nil {
		return domain.ErrInternal("lock game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID)
	}
	if game.CreatorID == userID {
		return domain.ErrConflict("the creator cannot leave their own game; cancel it instead")
	}

	removed, err := s.participants.Remove(ctx, tx, gameID, userID)
	if err != nil {
		return domain.ErrInternal("remove participant", err)
	}
	if !removed {
		return domain.ErrNotFound("participant", userID)
	}

	count, err := s.participants.Count(ctx, tx, gameID)
	if err != nil {
		return domain.ErrInternal("count participants", err)
	}
	if err := s.games.SetPlayerCount(ctx, tx, gameID, count, domain.StatusForCount(count, game.MaxPlayers)); err != nil {
		return domain.ErrInternal("update player count", err)
	}

	note, err := domain.NewPlayerLeftNote(game, userID, count)
	if err != nil {
		return domain.ErrInternal("build notification", err)
	}
	if err := s.outbox.Insert(ctx, tx, note); err != nil {
		return domain.ErrInternal("queue notification", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player left game", "game_id", gameID, "user_id", userID, "players", count)
	return nil
}

// Cancel deletes a game along with all its waitlist and participant rows, and
// queues a cancellation notice for every participant except the creator.
func (s *GameService) Cancel(ctx context.Context, gameID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	game, err := s.games.LockForUpdate(ctx, tx, gameID)
	if err != nil {
		return domain.ErrInternal("lock game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID)
	}

	players, err := s.participants.IDsByGame(ctx, tx, []string{gameID})
	if err != nil {
		return domain.ErrInternal("list participants", err)
	}

	if err := s.waitlist.DeleteByGame(ctx, tx, gameID); err != nil {
		return domain.ErrInternal("delete waitlist", err)
	}
	if err := s.participants.DeleteByGame(ctx, tx, gameID); err != nil {
		return domain.ErrInternal("delete participants", err)
	}
	if err := s.games.Delete(ctx, tx, gameID); err != nil {
		return domain.ErrInternal("delete game", err)
	}

	for _, userID := range players[gameID] {
		if userID == game.CreatorID {
			continue
		}
		note, err := domain.NewGameCancelledNote(game, userID)
		if err != nil {
			return domain.ErrInternal("build notification", err)
		}
		if err := s.outbox.Insert(ctx, tx, note); err != nil {
			return domain.ErrInternal("queue notification", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("game cancelled", "game_id", gameID, "players", len(players[gameID]))
	return nil
}

// PendingWaitlist returns the creator's review list for a game.
func (s *GameService) PendingWaitlist(ctx context.Context, gameID string) ([]domain.WaitlistRequest, error) {
	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", gameID)
	}
	requests, err := s.waitlist.ListPending(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list pending waitlist", err)
	}
	return requests, nil
}

// IsWaitlisted reports whether the user holds any waitlist entry for the game.
func (s *GameService) IsWaitlisted(ctx context.Context, gameID, userID string) (bool, error) {
	entry, err := s.waitlist.Find(ctx, s.pool, gameID, userID)
	if err != nil {
		return false, domain.ErrInternal("find waitlist entry", err)
	}
	return entry != nil, nil
}

// SetGroupChat records the external group-channel reference for a game.
// A no-op when the id does not exist.
func (s *GameService) SetGroupChat(ctx context.Context, gameID, groupChatID string) error {
	if err := s.games.SetGroupChat(ctx, s.pool, gameID, groupChatID); err != nil {
		return domain.ErrInternal("set group chat", err)
	}
	return nil
}

func (s *GameService) annotatePlayers(ctx context.Context, games []*domain.Game) error {
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	byGame, err := s.participants.IDsByGame(ctx, s.pool, ids)
	if err != nil {
		return domain.ErrInternal("list participants", err)
	}
	for _, g := range games {
		g.PlayerIDs = byGame[g.ID]
	}
	return nil
}

func (s *GameService) annotateSlice(ctx context.Context, games []domain.Game) error {
	ptrs := make([]*domain.Game, len(games))
	for i := range games {
		ptrs[i] = &games[i]
	}
	return s.annotatePlayers(ctx, ptrs)
}

// asAppError passes an AppError through unchanged (expected declines keep
// their code) and wraps anything else as an internal fault.
func asAppError(err error, msg string) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal(msg, err)
}
