//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voro/platform/internal/domain"
)

func TestCreateGameSeatsCreator(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)

	game := env.createGame(t, "creator", 4)

	assert.Equal(t, domain.GameOpen, game.Status)
	assert.Equal(t, 1, game.CurrentPlayers)
	assert.Equal(t, []string{"creator"}, game.PlayerIDs)

	fetched, err := env.games.Get(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CurrentPlayers)
	assert.Equal(t, []string{"creator"}, fetched.PlayerIDs)
}

func TestCreateGameUnknownCreator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.games.Create(context.Background(), CreateGameInput{
		CreatorID:  "ghost",
		Name:       "x",
		Location:   "x",
		StartsAt:   time.Now().Unix() + 3600,
		EndsAt:     time.Now().Unix() + 7200,
		MinSkill:   3,
		MaxSkill:   5,
		MaxPlayers: 4,
	})

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestJoinWaitlistRequiresSkill(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	game := env.createGame(t, "creator", 4)

	_, err := env.users.Register(context.Background(), "noskill", "@noskill", "No Skill")
	require.NoError(t, err)

	err = env.games.JoinWaitlist(context.Background(), game.ID, "noskill")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestJoinWaitlistDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 4)

	ctx := context.Background()
	require.NoError(t, env.games.JoinWaitlist(ctx, game.ID, "ana"))

	err := env.games.JoinWaitlist(ctx, game.ID, "ana")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestApproveFillsGame(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 2)

	env.approveThrough(t, game.ID, "ana")

	fetched, err := env.games.Get(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GameFull, fetched.Status)
	assert.Equal(t, 2, fetched.CurrentPlayers)
	assert.ElementsMatch(t, []string{"creator", "ana"}, fetched.PlayerIDs)

	// The approval retains the reviewed waitlist row.
	entry, err := env.waitlist.Find(context.Background(), env.pool, game.ID, "ana")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, domain.WaitlistApproved, entry.Status)

	kinds := env.outboxKinds(t)
	assert.Contains(t, kinds, domain.NoteWaitlistRequested)
	assert.Contains(t, kinds, domain.NoteWaitlistApproved)
	assert.Contains(t, kinds, domain.NoteGameFull)
}

func TestJoinFullGameConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	env.registerPlayer(t, "ben", 4.0)
	game := env.createGame(t, "creator", 2)
	env.approveThrough(t, game.ID, "ana")

	err := env.games.JoinWaitlist(context.Background(), game.ID, "ben")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestApproveTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 4)
	env.approveThrough(t, game.ID, "ana")

	err := env.games.Approve(context.Background(), game.ID, "ana")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	fetched, err := env.games.Get(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.CurrentPlayers)
}

func TestRejectLeavesGameUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 4)

	ctx := context.Background()
	require.NoError(t, env.games.JoinWaitlist(ctx, game.ID, "ana"))
	require.NoError(t, env.games.Reject(ctx, game.ID, "ana"))

	fetched, err := env.games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CurrentPlayers)
	assert.Equal(t, []string{"creator"}, fetched.PlayerIDs)

	// Rejected entries cannot be approved afterwards.
	err = env.games.Approve(ctx, game.ID, "ana")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	assert.Contains(t, env.outboxKinds(t), domain.NoteWaitlistRejected)
}

func TestLeaveReopensFullGame(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 2)
	env.approveThrough(t, game.ID, "ana")

	ctx := context.Background()
	require.NoError(t, env.games.Leave(ctx, game.ID, "ana"))

	fetched, err := env.games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GameOpen, fetched.Status)
	assert.Equal(t, 1, fetched.CurrentPlayers)
	assert.Equal(t, []string{"creator"}, fetched.PlayerIDs)

	assert.Contains(t, env.outboxKinds(t), domain.NotePlayerLeft)
}

func TestLeaveAsNonParticipant(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 4)

	err := env.games.Leave(context.Background(), game.ID, "ana")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreatorCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	game := env.createGame(t, "creator", 4)

	err := env.games.Leave(context.Background(), game.ID, "creator")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestCancelCascades(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	env.registerPlayer(t, "ben", 4.0)
	game := env.createGame(t, "creator", 4)
	env.approveThrough(t, game.ID, "ana")
	require.NoError(t, env.games.JoinWaitlist(context.Background(), game.ID, "ben"))

	ctx := context.Background()
	require.NoError(t, env.games.Cancel(ctx, game.ID))

	_, err := env.games.Get(ctx, game.ID)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	entry, err := env.waitlist.Find(ctx, env.pool, game.ID, "ben")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Cancellation notices go to participants other than the creator.
	drafts, err := env.outbox.FetchUnpublished(ctx, env.pool, 1000)
	require.NoError(t, err)
	var cancelled []string
	for _, d := range drafts {
		if d.Kind == domain.NoteGameCancelled {
			cancelled = append(cancelled, d.RecipientID)
		}
	}
	assert.Equal(t, []string{"ana"}, cancelled)
}

func TestDeleteUserRepairsGames(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 2)
	env.approveThrough(t, game.ID, "ana")

	ctx := context.Background()
	require.NoError(t, env.users.Delete(ctx, "ana"))

	_, err := env.users.Get(ctx, "ana")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// The full game reopened with the seat freed.
	fetched, err := env.games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GameOpen, fetched.Status)
	assert.Equal(t, 1, fetched.CurrentPlayers)
	assert.Equal(t, []string{"creator"}, fetched.PlayerIDs)
}

func TestRegisterIsUpsert(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "ana", 3.5)

	ctx := context.Background()
	require.NoError(t, env.users.SetBio(ctx, "ana", "lefty, prefers clay"))

	// Re-registration refreshes identity fields but keeps skill and bio.
	_, err := env.users.Register(ctx, "ana", "@ana_new", "Ana R.")
	require.NoError(t, err)

	user, err := env.users.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "@ana_new", user.Handle)
	assert.Equal(t, "Ana R.", user.DisplayName)
	require.NotNil(t, user.SkillLevel)
	assert.Equal(t, 3.5, *user.SkillLevel)
	require.NotNil(t, user.Bio)
	assert.Equal(t, "lefty, prefers clay", *user.Bio)
}

func TestListOpenExcludesFullGames(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	full := env.createGame(t, "creator", 2)
	open := env.createGame(t, "creator", 4)
	env.approveThrough(t, full.ID, "ana")

	games, err := env.games.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, open.ID, games[0].ID)
}

func TestListForUserIncludesFullGames(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	game := env.createGame(t, "creator", 2)
	env.approveThrough(t, game.ID, "ana")

	games, err := env.games.ListForUser(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, game.ID, games[0].ID)
	assert.Equal(t, domain.GameFull, games[0].Status)
}

func TestPendingWaitlistOrder(t *testing.T) {
	env := newTestEnv(t)
	env.registerPlayer(t, "creator", 4.0)
	env.registerPlayer(t, "ana", 3.5)
	env.registerPlayer(t, "ben", 4.0)
	game := env.createGame(t, "creator", 4)

	ctx := context.Background()
	require.NoError(t, env.games.JoinWaitlist(ctx, game.ID, "ana"))
	require.NoError(t, env.games.JoinWaitlist(ctx, game.ID, "ben"))

	pending, err := env.games.PendingWaitlist(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ana", pending[0].UserID)
	assert.Equal(t, "ben", pending[1].UserID)
	require.NotNil(t, pending[0].SkillLevel)
	assert.Equal(t, 3.5, *pending[0].SkillLevel)
}
