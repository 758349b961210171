package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/realtime"
	"github.com/club-padel/admin-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- фейки поверх интерфейсов репозиториев ---

// fakeTransactor выполняет fn напрямую: состояние фейков живёт в памяти,
// транзакционность проверяется на уровне postgres-реализаций.
type fakeTransactor struct{}

func (fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	match.CreatedAt = time.Now()
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) List(_ context.Context) ([]models.Match, error) {
	out := make([]models.Match, 0, len(r.matches))
	for _, match := range r.matches {
		out = append(out, *match)
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for _, match := range r.matches {
		if match.TournamentID != nil && *match.TournamentID == tournamentID {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListBetween(_ context.Context, from, to time.Time) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for _, match := range r.matches {
		if match.StartTime != nil && !match.StartTime.Before(from) && match.StartTime.Before(to) {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) SetResult(_ context.Context, _ repositories.SQLExecutor, id int, set1, set2, set3 *string, winner models.MatchWinner) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.Winner != models.WinnerPending {
		return repositories.ErrMatchAlreadyScored
	}
	match.ScoreSet1, match.ScoreSet2, match.ScoreSet3 = set1, set2, set3
	match.Winner = winner
	return nil
}

func (r *fakeMatchRepo) ClearResult(_ context.Context, _ repositories.SQLExecutor, id int) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.Winner == models.WinnerPending {
		return repositories.ErrMatchNotScored
	}
	match.Winner = models.WinnerPending
	return nil
}

func (r *fakeMatchRepo) Count(_ context.Context) (int, error) { return len(r.matches), nil }

func (r *fakeMatchRepo) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, match := range r.matches {
		if match.Winner == models.WinnerPending {
			count++
		}
	}
	return count, nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *fakePlayerRepo) add(name string) *models.Player {
	player := &models.Player{ID: r.nextID, Name: name, Level: models.DefaultPlayerLevel}
	r.nextID++
	r.players[player.ID] = player
	return player
}

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	for _, existing := range r.players {
		if existing.Name == player.Name {
			return repositories.ErrPlayerNameConflict
		}
	}
	player.ID = r.nextID
	r.nextID++
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(r.players))
	for _, player := range r.players {
		out = append(out, *player)
	}
	return out, nil
}

func (r *fakePlayerRepo) ListRanking(_ context.Context, _ int) ([]models.Player, error) {
	return r.List(context.Background())
}

func (r *fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(_ context.Context, id int, key *string) error {
	player, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.AvatarKey = key
	return nil
}

func (r *fakePlayerRepo) AddPoints(_ context.Context, _ repositories.SQLExecutor, id int, delta int) error {
	player, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.Points += delta
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

func (r *fakePlayerRepo) Count(_ context.Context) (int, error) { return len(r.players), nil }

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) add(name string, status models.TournamentStatus) *models.Tournament {
	tournament := &models.Tournament{ID: r.nextID, Name: name, Status: status}
	r.nextID++
	r.tournaments[tournament.ID] = tournament
	return tournament
}

func (r *fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) error {
	tournament.ID = r.nextID
	r.nextID++
	copied := *tournament
	r.tournaments[tournament.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *tournament
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, tournament := range r.tournaments {
		out = append(out, *tournament)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, tournament *models.Tournament) error {
	if _, ok := r.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *tournament
	r.tournaments[tournament.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) Count(_ context.Context, status *models.TournamentStatus) (int, error) {
	count := 0
	for _, tournament := range r.tournaments {
		if status == nil || tournament.Status == *status {
			count++
		}
	}
	return count, nil
}

func (r *fakeTournamentRepo) MarkStartedDue(_ context.Context, now time.Time) (int, error) {
	count := 0
	for _, tournament := range r.tournaments {
		if tournament.Status == models.StatusAbierto && !tournament.StartDate.After(now) {
			tournament.Status = models.StatusEnCurso
			count++
		}
	}
	return count, nil
}

type fakeNotifier struct {
	messages []realtime.Message
}

func (n *fakeNotifier) BroadcastToRoom(_ string, message interface{}) {
	if msg, ok := message.(realtime.Message); ok {
		n.messages = append(n.messages, msg)
	}
}

func (n *fakeNotifier) eventTypes() []string {
	types := make([]string, 0, len(n.messages))
	for _, msg := range n.messages {
		types = append(types, msg.Type)
	}
	return types
}

// --- окружение тестов ---

type matchServiceEnv struct {
	service     MatchService
	matches     *fakeMatchRepo
	players     *fakePlayerRepo
	tournaments *fakeTournamentRepo
	notifier    *fakeNotifier
}

func newMatchServiceEnv(t *testing.T) *matchServiceEnv {
	t.Helper()
	env := &matchServiceEnv{
		matches:     newFakeMatchRepo(),
		players:     newFakePlayerRepo(),
		tournaments: newFakeTournamentRepo(),
		notifier:    &fakeNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewMatchService(fakeTransactor{}, env.matches, env.players, env.tournaments, env.notifier, logger)
	return env
}

// createMatch создаёт четырёх игроков и pending-матч между ними.
func (env *matchServiceEnv) createMatch(t *testing.T, tournamentID *int) *models.Match {
	t.Helper()
	ana := env.players.add("Ana")
	eva := env.players.add("Eva")
	luis := env.players.add("Luis")
	ivan := env.players.add("Iván")

	match, err := env.service.Create(context.Background(), CreateMatchInput{
		TournamentID: tournamentID,
		Player1AID:   ana.ID,
		Player1BID:   eva.ID,
		Player2AID:   luis.ID,
		Player2BID:   ivan.ID,
	})
	require.NoError(t, err)
	return match
}

func intPtr(v int) *int { return &v }

func finalizeInput(side models.MatchWinner) FinalizeMatchInput {
	return FinalizeMatchInput{
		WinningSide: side,
		Set1:        SetScoreInput{ScoreA: intPtr(6), ScoreB: intPtr(3)},
		Set2:        SetScoreInput{ScoreA: intPtr(6), ScoreB: intPtr(4)},
	}
}

func (env *matchServiceEnv) points(t *testing.T, id int) int {
	t.Helper()
	player, err := env.players.GetByID(context.Background(), id)
	require.NoError(t, err)
	return player.Points
}

// --- тесты ---

func TestMatchService_Create_RequiresFourDistinctPlayers(t *testing.T) {
	env := newMatchServiceEnv(t)
	ana := env.players.add("Ana")
	eva := env.players.add("Eva")
	luis := env.players.add("Luis")

	_, err := env.service.Create(context.Background(), CreateMatchInput{
		Player1AID: ana.ID,
		Player1BID: eva.ID,
		Player2AID: luis.ID,
		Player2BID: ana.ID,
	})
	assert.ErrorIs(t, err, ErrMatchPlayersRequired)
}

func TestMatchService_Create_SnapshotsNames(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	assert.Equal(t, "Ana", match.Player1A.Name)
	assert.Equal(t, "Iván", match.Player2B.Name)
	require.NotNil(t, match.Player1A.PlayerID)
	assert.Equal(t, models.WinnerPending, match.Winner)
	assert.Equal(t, []string{realtime.EventMatchCreated}, env.notifier.eventTypes())
}

func TestMatchService_Finalize_CreditsWinningPairOnly(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	updated, err := env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideA))
	require.NoError(t, err)

	assert.Equal(t, models.WinnerSideA, updated.Winner)
	require.NotNil(t, updated.ScoreSet1)
	assert.Equal(t, "6-3", *updated.ScoreSet1)
	require.NotNil(t, updated.ScoreSet2)
	assert.Equal(t, "6-4", *updated.ScoreSet2)
	assert.Nil(t, updated.ScoreSet3)

	assert.Equal(t, 3, env.points(t, *match.Player1A.PlayerID))
	assert.Equal(t, 3, env.points(t, *match.Player1B.PlayerID))
	assert.Equal(t, 0, env.points(t, *match.Player2A.PlayerID))
	assert.Equal(t, 0, env.points(t, *match.Player2B.PlayerID))
}

func TestMatchService_Finalize_Twice(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	_, err := env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideB))
	require.NoError(t, err)

	_, err = env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideA))
	assert.ErrorIs(t, err, ErrMatchAlreadyScored)

	// кредит начислен ровно один раз и только паре B
	assert.Equal(t, 0, env.points(t, *match.Player1A.PlayerID))
	assert.Equal(t, 3, env.points(t, *match.Player2A.PlayerID))
	assert.Equal(t, 3, env.points(t, *match.Player2B.PlayerID))
}

func TestMatchService_FinalizeThenReopen_NetsZero(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	_, err := env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideA))
	require.NoError(t, err)

	reopened, err := env.service.Reopen(context.Background(), match.ID)
	require.NoError(t, err)

	assert.Equal(t, models.WinnerPending, reopened.Winner)
	// сеты сохраняются для повторного ввода
	require.NotNil(t, reopened.ScoreSet1)
	assert.Equal(t, "6-3", *reopened.ScoreSet1)

	for _, slot := range []models.MatchSlot{match.Player1A, match.Player1B, match.Player2A, match.Player2B} {
		assert.Equal(t, 0, env.points(t, *slot.PlayerID))
	}
	assert.Equal(t, []string{
		realtime.EventMatchCreated,
		realtime.EventMatchScored,
		realtime.EventMatchReopened,
	}, env.notifier.eventTypes())
}

func TestMatchService_Reopen_PendingMatch(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	_, err := env.service.Reopen(context.Background(), match.ID)
	assert.ErrorIs(t, err, ErrMatchNotScored)
}

func TestMatchService_Finalize_IncompleteSet(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	input := finalizeInput(models.WinnerSideA)
	input.Set2.ScoreB = nil

	_, err := env.service.Finalize(context.Background(), match.ID, input)
	assert.ErrorIs(t, err, ErrIncompleteSetScore)
	assert.Equal(t, 0, env.points(t, *match.Player1A.PlayerID))
}

func TestMatchService_Finalize_InvalidWinningSide(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	_, err := env.service.Finalize(context.Background(), match.ID, FinalizeMatchInput{WinningSide: models.WinnerPending})
	assert.ErrorIs(t, err, ErrInvalidWinningSide)
}

func TestMatchService_Finalize_SkipsDeletedPlayerSlot(t *testing.T) {
	env := newMatchServiceEnv(t)
	match := env.createMatch(t, nil)

	// игрок удалён после создания матча, слот остаётся со снимком имени
	removedID := *match.Player1B.PlayerID
	require.NoError(t, env.players.Delete(context.Background(), removedID))
	stored := env.matches.matches[match.ID]
	stored.Player1B.PlayerID = nil

	_, err := env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideA))
	require.NoError(t, err)

	assert.Equal(t, 3, env.points(t, *match.Player1A.PlayerID))
}

func TestMatchService_Finalize_BroadcastsToTournamentRoom(t *testing.T) {
	env := newMatchServiceEnv(t)
	tournament := env.tournaments.add("Open de Verano", models.StatusEnCurso)
	match := env.createMatch(t, intPtr(tournament.ID))

	_, err := env.service.Finalize(context.Background(), match.ID, finalizeInput(models.WinnerSideA))
	require.NoError(t, err)

	rooms := make(map[string]bool)
	for _, msg := range env.notifier.messages {
		if msg.Type == realtime.EventMatchScored {
			room := msg.RoomID
			if room == "" {
				room = realtime.RoomAllMatches
			}
			rooms[room] = true
		}
	}
	assert.True(t, rooms[realtime.RoomAllMatches])
	assert.True(t, rooms[realtime.TournamentRoom(tournament.ID)])
}

func TestMatchService_Calendar_InvalidRange(t *testing.T) {
	env := newMatchServiceEnv(t)
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := env.service.Calendar(context.Background(), from, from)
	assert.ErrorIs(t, err, ErrInvalidCalendarRange)
}

func TestMatchService_TournamentBracket_GroupsByRound(t *testing.T) {
	env := newMatchServiceEnv(t)
	tournament := env.tournaments.add("Open de Verano", models.StatusEnCurso)

	env.createMatch(t, intPtr(tournament.ID))
	players := []*models.Player{
		env.players.add("Marta"), env.players.add("Sofía"),
		env.players.add("Raúl"), env.players.add("Diego"),
	}
	final := "Final"
	_, err := env.service.Create(context.Background(), CreateMatchInput{
		TournamentID: intPtr(tournament.ID),
		RoundName:    &final,
		Player1AID:   players[0].ID,
		Player1BID:   players[1].ID,
		Player2AID:   players[2].ID,
		Player2BID:   players[3].ID,
	})
	require.NoError(t, err)

	rounds, err := env.service.TournamentBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, "Final", rounds[0].Name)
}
