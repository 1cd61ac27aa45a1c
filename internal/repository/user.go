package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/voro/platform/internal/domain"
)

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) Upsert(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, handle, display_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET handle = EXCLUDED.handle, display_name = EXCLUDED.display_name`,
		user.ID, user.Handle, user.DisplayName, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, handle, display_name, skill_level, bio, games_completed, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) UpdateSkill(ctx context.Context, db DBTX, id string, skill float64) error {
	_, err := db.Exec(ctx, `UPDATE users SET skill_level = $2 WHERE id = $1`, id, skill)
	if err != nil {
		return fmt.Errorf("update user skill: %w", err)
	}
	return nil
}

func (r *userRepo) UpdateDisplayName(ctx context.Context, db DBTX, id, displayName string) error {
	_, err := db.Exec(ctx, `UPDATE users SET display_name = $2 WHERE id = $1`, id, displayName)
	if err != nil {
		return fmt.Errorf("update user display name: %w", err)
	}
	return nil
}

func (r *userRepo) UpdateBio(ctx context.Context, db DBTX, id, bio string) error {
	_, err := db.Exec(ctx, `UPDATE users SET bio = $2 WHERE id = $1`, id, bio)
	if err != nil {
		return fmt.Errorf("update user bio: %w", err)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, db DBTX, id string) error {
	_, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Handle, &u.DisplayName, &u.SkillLevel, &u.Bio, &u.GamesCompleted, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
