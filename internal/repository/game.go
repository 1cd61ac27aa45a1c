package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/infra"
)

const gameColumns = `id, name, description, creator_id, location, starts_at, ends_at,
	court_cost, min_skill, max_skill, max_players, current_players, status,
	group_chat_id, created_at`

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

func (r *gameRepo) Insert(ctx context.Context, db DBTX, game *domain.Game) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games (id, name, description, creator_id, location, starts_at, ends_at,
			court_cost, min_skill, max_skill, max_players, current_players, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		game.ID, game.Name, game.Description, game.CreatorID, game.Location,
		game.StartsAt, game.EndsAt, infra.Int64ToNumeric(game.CourtCostCents),
		game.MinSkill, game.MaxSkill, game.MaxPlayers, game.CurrentPlayers,
		string(game.Status), game.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.Game, error) {
	row := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (r *gameRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Game, error) {
	row := tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id)
	return scanGame(row)
}

func (r *gameRepo) ListOpen(ctx context.Context, db DBTX, now int64) ([]domain.Game, error) {
	rows, err := db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE status = $1 AND starts_at > $2
		ORDER BY starts_at ASC`, string(domain.GameOpen), now)
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepo) ListByParticipant(ctx context.Context, db DBTX, userID string) ([]domain.Game, error) {
	rows, err := db.Query(ctx, `
		SELECT g.id, g.name, g.description, g.creator_id, g.location, g.starts_at, g.ends_at,
			g.court_cost, g.min_skill, g.max_skill, g.max_players, g.current_players, g.status,
			g.group_chat_id, g.created_at
		FROM games g
		JOIN game_players gp ON g.id = gp.game_id
		WHERE gp.user_id = $1
		ORDER BY g.starts_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user games: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepo) SetPlayerCount(ctx context.Context, tx pgx.Tx, id string, count int, status domain.GameStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE games SET current_players = $2, status = $3 WHERE id = $1`,
		id, count, string(status))
	if err != nil {
		return fmt.Errorf("set player count: %w", err)
	}
	return nil
}

func (r *gameRepo) SetGroupChat(ctx context.Context, db DBTX, id, groupChatID string) error {
	_, err := db.Exec(ctx, `UPDATE games SET group_chat_id = $2 WHERE id = $1`, id, groupChatID)
	if err != nil {
		return fmt.Errorf("set group chat: %w", err)
	}
	return nil
}

func (r *gameRepo) Delete(ctx context.Context, db DBTX, id string) error {
	_, err := db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

func (r *gameRepo) ListStartingBetween(ctx context.Context, db DBTX, from, to int64) ([]domain.UpcomingGame, error) {
	rows, err := db.Query(ctx, `
		SELECT g.id, g.name, g.location, g.starts_at, g.creator_id, gp.user_id, u.display_name
		FROM games g
		JOIN game_players gp ON g.id = gp.game_id
		JOIN users u ON gp.user_id = u.id
		WHERE g.starts_at BETWEEN $1 AND $2
		ORDER BY g.starts_at ASC, gp.joined_at ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list upcoming games: %w", err)
	}
	defer rows.Close()

	// One row per (game, player); group into games preserving start order.
	var games []domain.UpcomingGame
	index := make(map[string]int)
	for rows.Next() {
		var gameID, name, location, creatorID string
		var startsAt int64
		var player domain.GamePlayer
		if err := rows.Scan(&gameID, &name, &location, &startsAt, &creatorID,
			&player.UserID, &player.DisplayName); err != nil {
			return nil, fmt.Errorf("scan upcoming game: %w", err)
		}
		i, ok := index[gameID]
		if !ok {
			i = len(games)
			index[gameID] = i
			games = append(games, domain.UpcomingGame{
				ID: gameID, Name: name, Location: location,
				StartsAt: startsAt, CreatorID: creatorID,
			})
		}
		games[i].Players = append(games[i].Players, player)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	var status string
	var costNum pgtype.Numeric
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.Location,
		&g.StartsAt, &g.EndsAt, &costNum, &g.MinSkill, &g.MaxSkill,
		&g.MaxPlayers, &g.CurrentPlayers, &status, &g.GroupChatID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.Status = domain.GameStatus(status)
	g.CourtCostCents, err = infra.NumericToInt64(costNum)
	if err != nil {
		return nil, fmt.Errorf("convert court_cost: %w", err)
	}
	return &g, nil
}

func collectGames(rows pgx.Rows) ([]domain.Game, error) {
	defer rows.Close()
	var games []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}
