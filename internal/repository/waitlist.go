package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/voro/platform/internal/domain"
)

type waitlistRepo struct{}

// NewWaitlistRepository returns a pgx-backed WaitlistRepository.
func NewWaitlistRepository() WaitlistRepository {
	return &waitlistRepo{}
}

func (r *waitlistRepo) Add(ctx context.Context, db DBTX, gameID, userID string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO waitlist (game_id, user_id) VALUES ($1, $2)`, gameID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict("user already has a waitlist entry for this game")
		}
		return fmt.Errorf("insert waitlist entry: %w", err)
	}
	return nil
}

func (r *waitlistRepo) Find(ctx context.Context, db DBTX, gameID, userID string) (*domain.WaitlistEntry, error) {
	row := db.QueryRow(ctx, `
		SELECT id, game_id, user_id, status, created_at
		FROM waitlist WHERE game_id = $1 AND user_id = $2`, gameID, userID)

	var e domain.WaitlistEntry
	var status string
	err := row.Scan(&e.ID, &e.GameID, &e.UserID, &status, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan waitlist entry: %w", err)
	}
	e.Status = domain.WaitlistStatus(status)
	return &e, nil
}

func (r *waitlistRepo) ListPending(ctx context.Context, db DBTX, gameID string) ([]domain.WaitlistRequest, error) {
	rows, err := db.Query(ctx, `
		SELECT w.user_id, u.display_name, u.handle, u.skill_level, w.created_at
		FROM waitlist w
		JOIN users u ON w.user_id = u.id
		WHERE w.game_id = $1 AND w.status = $2
		ORDER BY w.created_at ASC`, gameID, string(domain.WaitlistPending))
	if err != nil {
		return nil, fmt.Errorf("list pending waitlist: %w", err)
	}
	defer rows.Close()

	var requests []domain.WaitlistRequest
	for rows.Next() {
		var req domain.WaitlistRequest
		if err := rows.Scan(&req.UserID, &req.DisplayName, &req.Handle, &req.SkillLevel, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("scan waitlist request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *waitlistRepo) Review(ctx context.Context, db DBTX, gameID, userID string, status domain.WaitlistStatus) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE waitlist SET status = $3
		WHERE game_id = $1 AND user_id = $2 AND status = $4`,
		gameID, userID, string(status), string(domain.WaitlistPending))
	if err != nil {
		return false, fmt.Errorf("review waitlist entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *waitlistRepo) DeleteByGame(ctx context.Context, db DBTX, gameID string) error {
	_, err := db.Exec(ctx, `DELETE FROM waitlist WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game waitlist: %w", err)
	}
	return nil
}

func (r *waitlistRepo) DeleteByUser(ctx context.Context, db DBTX, userID string) error {
	_, err := db.Exec(ctx, `DELETE FROM waitlist WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user waitlist entries: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505), the one storage failure that is an expected,
// non-fatal outcome.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
