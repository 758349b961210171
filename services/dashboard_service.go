package services

import (
	"context"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
	"golang.org/x/sync/errgroup"
)

const dashboardTopPlayers = 5

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) DashboardService {
	return &dashboardService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

// GetStats собирает счётчики параллельно: запросы независимы.
func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.PlayersTotal, err = s.playerRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TournamentsTotal, err = s.tournamentRepo.Count(ctx, nil)
		return err
	})
	g.Go(func() error {
		open := models.StatusAbierto
		var err error
		stats.OpenTournaments, err = s.tournamentRepo.Count(ctx, &open)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesTotal, err = s.matchRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesLive, err = s.matchRepo.CountPending(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TopPlayers, err = s.playerRepo.ListRanking(ctx, dashboardTopPlayers)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
