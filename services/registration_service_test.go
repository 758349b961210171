package services

import (
	"context"
	"testing"
	"time"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
	nextID        int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[int]*models.Registration), nextID: 1}
}

func (r *fakeRegistrationRepo) Create(_ context.Context, registration *models.Registration) error {
	registration.ID = r.nextID
	r.nextID++
	registration.CreatedAt = time.Now()
	copied := *registration
	r.registrations[registration.ID] = &copied
	return nil
}

func (r *fakeRegistrationRepo) GetByID(_ context.Context, id int) (*models.Registration, error) {
	registration, ok := r.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *registration
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error) {
	out := make([]models.Registration, 0)
	for _, registration := range r.registrations {
		if registration.TournamentID != tournamentID {
			continue
		}
		if status != nil && registration.Status != *status {
			continue
		}
		out = append(out, *registration)
	}
	return out, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	registration, ok := r.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	if registration.Status != models.RegistrationPending {
		return repositories.ErrRegistrationAlreadyResolved
	}
	registration.Status = status
	return nil
}

type registrationServiceEnv struct {
	service       RegistrationService
	registrations *fakeRegistrationRepo
	tournaments   *fakeTournamentRepo
	players       *fakePlayerRepo
}

func newRegistrationServiceEnv(t *testing.T) *registrationServiceEnv {
	t.Helper()
	env := &registrationServiceEnv{
		registrations: newFakeRegistrationRepo(),
		tournaments:   newFakeTournamentRepo(),
		players:       newFakePlayerRepo(),
	}
	env.service = NewRegistrationService(fakeTransactor{}, env.registrations, env.tournaments, env.players)
	return env
}

func (env *registrationServiceEnv) submit(t *testing.T, tournamentID int, player1 string, player2 *string) *models.Registration {
	t.Helper()
	registration, err := env.service.Submit(context.Background(), tournamentID, SubmitRegistrationInput{
		Player1Name: player1,
		Player2Name: player2,
	})
	require.NoError(t, err)
	return registration
}

func TestRegistrationService_Submit(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)

	registration := env.submit(t, tournament.ID, "  Carmen  ", nil)

	assert.Equal(t, "Carmen", registration.Player1Name)
	assert.Nil(t, registration.Player2Name)
	assert.Equal(t, models.RegistrationPending, registration.Status)
}

func TestRegistrationService_Submit_ClosedTournament(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusEnCurso)

	_, err := env.service.Submit(context.Background(), tournament.ID, SubmitRegistrationInput{Player1Name: "Carmen"})
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRegistrationService_Submit_BlankName(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)

	_, err := env.service.Submit(context.Background(), tournament.ID, SubmitRegistrationInput{Player1Name: "   "})
	assert.ErrorIs(t, err, ErrRegistrationNameRequired)
}

func TestRegistrationService_Approve_CreatesPair(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)
	partner := "Lucía"
	registration := env.submit(t, tournament.ID, "Carmen", &partner)

	approved, err := env.service.Approve(context.Background(), registration.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, approved.Status)

	players, err := env.players.List(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)
	for _, player := range players {
		assert.Equal(t, models.DefaultPlayerLevel, player.Level)
		assert.Equal(t, 0, player.Points)
	}
}

func TestRegistrationService_Approve_SinglePlayer(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)
	registration := env.submit(t, tournament.ID, "Carmen", nil)

	_, err := env.service.Approve(context.Background(), registration.ID)
	require.NoError(t, err)

	players, err := env.players.List(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Carmen", players[0].Name)
}

func TestRegistrationService_Approve_AlreadyResolved(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)
	registration := env.submit(t, tournament.ID, "Carmen", nil)

	_, err := env.service.Reject(context.Background(), registration.ID)
	require.NoError(t, err)

	_, err = env.service.Approve(context.Background(), registration.ID)
	assert.ErrorIs(t, err, ErrRegistrationAlreadyResolved)

	players, err := env.players.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestRegistrationService_Reject_DoesNotCreatePlayers(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)
	registration := env.submit(t, tournament.ID, "Carmen", nil)

	rejected, err := env.service.Reject(context.Background(), registration.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRejected, rejected.Status)

	players, err := env.players.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestRegistrationService_Approve_NotFound(t *testing.T) {
	env := newRegistrationServiceEnv(t)

	_, err := env.service.Approve(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_ListByTournament_FiltersStatus(t *testing.T) {
	env := newRegistrationServiceEnv(t)
	tournament := env.tournaments.add("Torneo de Primavera", models.StatusAbierto)
	env.submit(t, tournament.ID, "Carmen", nil)
	second := env.submit(t, tournament.ID, "Lucía", nil)

	_, err := env.service.Reject(context.Background(), second.ID)
	require.NoError(t, err)

	pending := models.RegistrationPending
	list, err := env.service.ListByTournament(context.Background(), tournament.ID, &pending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Carmen", list[0].Player1Name)
}
