package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
)

type TournamentInput struct {
	Name      string                   `json:"name"`
	Category  string                   `json:"category"`
	StartDate time.Time                `json:"start_date"`
	Status    *models.TournamentStatus `json:"status"`
}

type TournamentService interface {
	Create(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	// AutoStartDue переводит открытые турниры с наступившей датой старта
	// в en_curso. Вызывается планировщиком.
	AutoStartDue(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, logger: logger}
}

func (s *tournamentService) Create(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	status := models.StatusAbierto
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTournamentStatus
		}
		status = *input.Status
	}

	tournament := &models.Tournament{
		Name:      name,
		Category:  strings.TrimSpace(input.Category),
		StartDate: input.StartDate,
		Status:    status,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidTournamentStatus
	}

	tournament.Name = name
	tournament.Category = strings.TrimSpace(input.Category)
	tournament.StartDate = input.StartDate
	if input.Status != nil {
		tournament.Status = *input.Status
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

func (s *tournamentService) AutoStartDue(ctx context.Context) error {
	updated, err := s.tournamentRepo.MarkStartedDue(ctx, time.Now())
	if err != nil {
		return err
	}
	if updated > 0 {
		s.logger.Info("tournaments moved to en_curso", slog.Int("count", updated))
	}
	return nil
}
