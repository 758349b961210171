package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/club-padel/admin-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentServiceEnv(t *testing.T) (TournamentService, *fakeTournamentRepo) {
	t.Helper()
	repo := newFakeTournamentRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTournamentService(repo, logger), repo
}

func TestTournamentService_Create_DefaultsToAbierto(t *testing.T) {
	service, _ := newTournamentServiceEnv(t)

	tournament, err := service.Create(context.Background(), TournamentInput{
		Name:      " Open de Verano ",
		Category:  "Mixto B",
		StartDate: time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Open de Verano", tournament.Name)
	assert.Equal(t, models.StatusAbierto, tournament.Status)
}

func TestTournamentService_Create_RejectsUnknownStatus(t *testing.T) {
	service, _ := newTournamentServiceEnv(t)

	bad := models.TournamentStatus("cancelado")
	_, err := service.Create(context.Background(), TournamentInput{Name: "Open", Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidTournamentStatus)
}

func TestTournamentService_Create_BlankName(t *testing.T) {
	service, _ := newTournamentServiceEnv(t)

	_, err := service.Create(context.Background(), TournamentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)
}

func TestTournamentService_Update_KeepsStatusWhenOmitted(t *testing.T) {
	service, repo := newTournamentServiceEnv(t)
	tournament := repo.add("Open de Verano", models.StatusEnCurso)

	updated, err := service.Update(context.Background(), tournament.ID, TournamentInput{
		Name:     "Open de Verano II",
		Category: "Mixto A",
	})
	require.NoError(t, err)
	assert.Equal(t, "Open de Verano II", updated.Name)
	assert.Equal(t, models.StatusEnCurso, updated.Status)
}

func TestTournamentService_Update_NotFound(t *testing.T) {
	service, _ := newTournamentServiceEnv(t)

	_, err := service.Update(context.Background(), 42, TournamentInput{Name: "Open"})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_AutoStartDue(t *testing.T) {
	service, repo := newTournamentServiceEnv(t)

	due := repo.add("Ya empezó", models.StatusAbierto)
	due.StartDate = time.Now().Add(-time.Hour)
	future := repo.add("Todavía no", models.StatusAbierto)
	future.StartDate = time.Now().Add(48 * time.Hour)
	finished := repo.add("Cerrado", models.StatusFinalizado)
	finished.StartDate = time.Now().Add(-time.Hour)

	require.NoError(t, service.AutoStartDue(context.Background()))

	assert.Equal(t, models.StatusEnCurso, due.Status)
	assert.Equal(t, models.StatusAbierto, future.Status)
	assert.Equal(t, models.StatusFinalizado, finished.Status)
}
