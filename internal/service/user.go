package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/repository"
)

// UserService handles profile creation, edits and deletion. It delegates to
// the repositories without input validation; range checks for skill values
// live at the command layer.
type UserService struct {
	pool         *pgxpool.Pool
	users        repository.UserRepository
	games        repository.GameRepository
	participants repository.ParticipantRepository
	waitlist     repository.WaitlistRepository
	logger       *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	games repository.GameRepository,
	participants repository.ParticipantRepository,
	waitlist repository.WaitlistRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		pool:         pool,
		users:        users,
		games:        games,
		participants: participants,
		waitlist:     waitlist,
		logger:       logger,
	}
}

// Register creates a user on first contact, or refreshes the handle and
// display name of an existing one. Skill, bio and completed-game count are
// untouched on re-registration.
func (s *UserService) Register(ctx context.Context, id, handle, displayName string) (*domain.User, error) {
	user := &domain.User{
		ID:          id,
		Handle:      handle,
		DisplayName: displayName,
		CreatedAt:   time.Now().Unix(),
	}
	if err := s.users.Upsert(ctx, s.pool, user); err != nil {
		return nil, domain.ErrInternal("register user", err)
	}

	stored, err := s.users.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	return stored, nil
}

// Get returns a user profile.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", id)
	}
	return user, nil
}

// SetSkill updates the skill level. A no-op when the id does not exist.
func (s *UserService) SetSkill(ctx context.Context, id string, skill float64) error {
	if err := s.users.UpdateSkill(ctx, s.pool, id, skill); err != nil {
		return domain.ErrInternal("update skill", err)
	}
	return nil
}

// SetDisplayName updates the display name. A no-op when the id does not exist.
func (s *UserService) SetDisplayName(ctx context.Context, id, displayName string) error {
	if err := s.users.UpdateDisplayName(ctx, s.pool, id, displayName); err != nil {
		return domain.ErrInternal("update display name", err)
	}
	return nil
}

// SetBio updates the bio. A no-op when the id does not exist.
func (s *UserService) SetBio(ctx context.Context, id, bio string) error {
	if err := s.users.UpdateBio(ctx, s.pool, id, bio); err != nil {
		return domain.ErrInternal("update bio", err)
	}
	return nil
}

// Delete removes a user and everything referencing them, in one transaction:
// participant rows first (repairing each affected game's counter and
// reopening full games), then waitlist rows, then the user row. Games the
// user created are left in place without their creator.
func (s *UserService) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	gameIDs, err := s.participants.GameIDsByUser(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("list participations", err)
	}

	for _, gameID := range gameIDs {
		game, err := s.games.LockForUpdate(ctx, tx, gameID)
		if err != nil {
			return domain.ErrInternal("lock game", err)
		}
		if game == nil {
			continue
		}
		removed, err := s.participants.Remove(ctx, tx, gameID, id)
		if err != nil {
			return domain.ErrInternal("remove participant", err)
		}
		if !removed {
			continue
		}
		count, err := s.participants.Count(ctx, tx, gameID)
		if err != nil {
			return domain.ErrInternal("count participants", err)
		}
		if err := s.games.SetPlayerCount(ctx, tx, gameID, count, domain.StatusForCount(count, game.MaxPlayers)); err != nil {
			return domain.ErrInternal("update player count", err)
		}
	}

	if err := s.waitlist.DeleteByUser(ctx, tx, id); err != nil {
		return domain.ErrInternal("delete waitlist entries", err)
	}
	if err := s.users.Delete(ctx, tx, id); err != nil {
		return domain.ErrInternal("delete user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("user deleted", "user_id", id, "games_left", len(gameIDs))
	return nil
}
