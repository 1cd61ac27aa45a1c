package repository

import (
	"context"
	"fmt"

	"github.com/voro/platform/internal/domain"
)

type participantRepo struct{}

// NewParticipantRepository returns a pgx-backed ParticipantRepository.
func NewParticipantRepository() ParticipantRepository {
	return &participantRepo{}
}

func (r *participantRepo) Add(ctx context.Context, db DBTX, gameID, userID string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO game_players (game_id, user_id) VALUES ($1, $2)`, gameID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict("user is already a participant of this game")
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *participantRepo) Remove(ctx context.Context, db DBTX, gameID, userID string) (bool, error) {
	tag, err := db.Exec(ctx, `
		DELETE FROM game_players WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return false, fmt.Errorf("delete participant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *participantRepo) Count(ctx context.Context, db DBTX, gameID string) (int, error) {
	var n int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM game_players WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func (r *participantRepo) IDsByGame(ctx context.Context, db DBTX, gameIDs []string) (map[string][]string, error) {
	if len(gameIDs) == 0 {
		return map[string][]string{}, nil
	}
	rows, err := db.Query(ctx, `
		SELECT game_id, user_id FROM game_players
		WHERE game_id = ANY($1)
		ORDER BY joined_at ASC`, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	byGame := make(map[string][]string, len(gameIDs))
	for rows.Next() {
		var gameID, userID string
		if err := rows.Scan(&gameID, &userID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		byGame[gameID] = append(byGame[gameID], userID)
	}
	return byGame, rows.Err()
}

func (r *participantRepo) GameIDsByUser(ctx context.Context, db DBTX, userID string) ([]string, error) {
	rows, err := db.Query(ctx, `
		SELECT game_id FROM game_players WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user participations: %w", err)
	}
	defer rows.Close()

	var gameIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		gameIDs = append(gameIDs, id)
	}
	return gameIDs, rows.Err()
}

func (r *participantRepo) DeleteByGame(ctx context.Context, db DBTX, gameID string) error {
	_, err := db.Exec(ctx, `DELETE FROM game_players WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game participants: %w", err)
	}
	return nil
}
