package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
)

type SubmitRegistrationInput struct {
	Player1Name string  `json:"player_1_name"`
	Player2Name *string `json:"player_2_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
}

type RegistrationService interface {
	// Submit принимает публичную заявку. Запись возможна только пока
	// турнир в статусе abierto.
	Submit(ctx context.Context, tournamentID int, input SubmitRegistrationInput) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error)
	// Approve создаёт одного или двух игроков и закрывает заявку —
	// одной транзакцией.
	Approve(ctx context.Context, id int) (*models.Registration, error)
	Reject(ctx context.Context, id int) (*models.Registration, error)
}

type registrationService struct {
	transactor       repositories.Transactor
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	playerRepo       repositories.PlayerRepository
}

func NewRegistrationService(
	transactor repositories.Transactor,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
) RegistrationService {
	return &registrationService{
		transactor:       transactor,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		playerRepo:       playerRepo,
	}
}

func (s *registrationService) Submit(ctx context.Context, tournamentID int, input SubmitRegistrationInput) (*models.Registration, error) {
	player1 := strings.TrimSpace(input.Player1Name)
	if player1 == "" {
		return nil, ErrRegistrationNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusAbierto {
		return nil, ErrRegistrationNotOpen
	}

	registration := &models.Registration{
		TournamentID: tournamentID,
		Player1Name:  player1,
		Player2Name:  normalizeOptional(trimOptional(input.Player2Name)),
		Email:        normalizeOptional(input.Email),
		Phone:        normalizeOptional(input.Phone),
		Status:       models.RegistrationPending,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return registration, nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.registrationRepo.ListByTournament(ctx, tournamentID, status)
}

func (s *registrationService) Approve(ctx context.Context, id int) (*models.Registration, error) {
	registration, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Status != models.RegistrationPending {
		return nil, ErrRegistrationAlreadyResolved
	}

	// Игроки и смена статуса заявки — одна транзакция: одобрение без
	// созданных игроков (и наоборот) невозможно.
	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player1 := &models.Player{
			Name:  registration.Player1Name,
			Level: models.DefaultPlayerLevel,
			Email: registration.Email,
		}
		if err := s.playerRepo.Create(ctx, exec, player1); err != nil {
			return fmt.Errorf("failed to create player %q: %w", registration.Player1Name, err)
		}

		if registration.Player2Name != nil {
			player2 := &models.Player{
				Name:  *registration.Player2Name,
				Level: models.DefaultPlayerLevel,
			}
			if err := s.playerRepo.Create(ctx, exec, player2); err != nil {
				return fmt.Errorf("failed to create player %q: %w", *registration.Player2Name, err)
			}
		}

		return s.registrationRepo.UpdateStatus(ctx, exec, id, models.RegistrationApproved)
	})
	if err != nil {
		return nil, mapRegistrationRepoError(err)
	}

	registration.Status = models.RegistrationApproved
	return registration, nil
}

func (s *registrationService) Reject(ctx context.Context, id int) (*models.Registration, error) {
	registration, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Отклонение только меняет статус, игроки не создаются.
	if err := s.registrationRepo.UpdateStatus(ctx, nil, id, models.RegistrationRejected); err != nil {
		return nil, mapRegistrationRepoError(err)
	}

	registration.Status = models.RegistrationRejected
	return registration, nil
}

func (s *registrationService) getByID(ctx context.Context, id int) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	return registration, nil
}

func mapRegistrationRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationAlreadyResolved):
		return ErrRegistrationAlreadyResolved
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerNameConflict
	}
	return err
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
