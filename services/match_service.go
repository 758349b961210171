package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/club-padel/admin-api/bracket"
	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/realtime"
	"github.com/club-padel/admin-api/repositories"
)

// pointsPerWin — фиксированный кредит рейтинга за выигранный матч.
// Снятие при переоткрытии строго симметрично.
const pointsPerWin = 3

// MatchNotifier — рассылка событий матчей подписчикам.
// Реализуется realtime.Hub.
type MatchNotifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// SetScoreInput — счёт одного сета. Либо оба значения, либо ни одного.
type SetScoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

type CreateMatchInput struct {
	TournamentID *int       `json:"tournament_id"`
	RoundName    *string    `json:"round_name"`
	Player1AID   int        `json:"player_1_a_id"`
	Player1BID   int        `json:"player_1_b_id"`
	Player2AID   int        `json:"player_2_a_id"`
	Player2BID   int        `json:"player_2_b_id"`
	Court        *string    `json:"court"`
	Place        *string    `json:"place"`
	StartTime    *time.Time `json:"start_time"`
}

type FinalizeMatchInput struct {
	WinningSide models.MatchWinner `json:"winning_side"`
	Set1        SetScoreInput      `json:"set1"`
	Set2        SetScoreInput      `json:"set2"`
	Set3        SetScoreInput      `json:"set3"`
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	Calendar(ctx context.Context, from, to time.Time) ([]models.Match, error)
	TournamentBracket(ctx context.Context, tournamentID int) ([]bracket.Round, error)
	// Finalize записывает результат и начисляет очки победившей паре —
	// одной транзакцией, ровно один раз на матч.
	Finalize(ctx context.Context, id int, input FinalizeMatchInput) (*models.Match, error)
	// Reopen снимает начисленные очки и возвращает матч в pending.
	Reopen(ctx context.Context, id int) (*models.Match, error)
}

type matchService struct {
	transactor     repositories.Transactor
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	notifier       MatchNotifier
	logger         *slog.Logger
}

func NewMatchService(
	transactor repositories.Transactor,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	notifier MatchNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		transactor:     transactor,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	ids := []int{input.Player1AID, input.Player1BID, input.Player2AID, input.Player2BID}
	seen := make(map[int]bool, 4)
	for _, id := range ids {
		if id <= 0 || seen[id] {
			return nil, ErrMatchPlayersRequired
		}
		seen[id] = true
	}

	if input.TournamentID != nil {
		if _, err := s.tournamentRepo.GetByID(ctx, *input.TournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, err
		}
	}

	// Снимок имён берётся в момент создания: дальнейшие переименования и
	// удаления игроков не меняют карточку матча.
	slots := make([]models.MatchSlot, 4)
	for i, id := range ids {
		player, err := s.playerRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, id)
			}
			return nil, err
		}
		playerID := player.ID
		slots[i] = models.MatchSlot{PlayerID: &playerID, Name: player.Name}
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		RoundName:    normalizeOptional(input.RoundName),
		Player1A:     slots[0],
		Player1B:     slots[1],
		Player2A:     slots[2],
		Player2B:     slots[3],
		Court:        normalizeOptional(input.Court),
		Place:        normalizeOptional(input.Place),
		StartTime:    input.StartTime,
		Winner:       models.WinnerPending,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	s.broadcast(realtime.EventMatchCreated, match)
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context) ([]models.Match, error) {
	return s.matchRepo.List(ctx)
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}

func (s *matchService) Calendar(ctx context.Context, from, to time.Time) ([]models.Match, error) {
	if !to.After(from) {
		return nil, ErrInvalidCalendarRange
	}
	return s.matchRepo.ListBetween(ctx, from, to)
}

func (s *matchService) TournamentBracket(ctx context.Context, tournamentID int) ([]bracket.Round, error) {
	matches, err := s.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return bracket.GroupByRound(matches), nil
}

func (s *matchService) Finalize(ctx context.Context, id int, input FinalizeMatchInput) (*models.Match, error) {
	if input.WinningSide != models.WinnerSideA && input.WinningSide != models.WinnerSideB {
		return nil, ErrInvalidWinningSide
	}

	set1, err := formatSetScore(input.Set1)
	if err != nil {
		return nil, err
	}
	set2, err := formatSetScore(input.Set2)
	if err != nil {
		return nil, err
	}
	set3, err := formatSetScore(input.Set3)
	if err != nil {
		return nil, err
	}

	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if match.Winner != models.WinnerPending {
		return nil, ErrMatchAlreadyScored
	}

	var winners [2]models.MatchSlot
	if input.WinningSide == models.WinnerSideA {
		winners = [2]models.MatchSlot{match.Player1A, match.Player1B}
	} else {
		winners = [2]models.MatchSlot{match.Player2A, match.Player2B}
	}

	// Результат и оба начисления — одна транзакция: либо всё, либо ничего.
	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.SetResult(ctx, exec, id, set1, set2, set3, input.WinningSide); err != nil {
			return err
		}
		return s.applyPoints(ctx, exec, id, winners, pointsPerWin)
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.broadcast(realtime.EventMatchScored, updated)
	return updated, nil
}

func (s *matchService) Reopen(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	winners, ok := match.WinnerSlots()
	if !ok {
		return nil, ErrMatchNotScored
	}

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.ClearResult(ctx, exec, id); err != nil {
			return err
		}
		return s.applyPoints(ctx, exec, id, winners, -pointsPerWin)
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.broadcast(realtime.EventMatchReopened, updated)
	return updated, nil
}

// applyPoints двигает рейтинг обоих игроков пары. Слот с обнулённой ссылкой
// (игрок удалён) пропускается: история матча важнее несостоявшегося кредита.
func (s *matchService) applyPoints(ctx context.Context, exec repositories.SQLExecutor, matchID int, slots [2]models.MatchSlot, delta int) error {
	for _, slot := range slots {
		if slot.PlayerID == nil {
			s.logger.Warn("skipping points update for deleted player",
				slog.Int("match_id", matchID),
				slog.String("player_name", slot.Name),
				slog.Int("delta", delta))
			continue
		}
		if err := s.playerRepo.AddPoints(ctx, exec, *slot.PlayerID, delta); err != nil {
			return fmt.Errorf("failed to apply %d points to player %d: %w", delta, *slot.PlayerID, err)
		}
	}
	return nil
}

func (s *matchService) broadcast(eventType string, match *models.Match) {
	message := realtime.Message{Type: eventType, Payload: match}
	s.notifier.BroadcastToRoom(realtime.RoomAllMatches, message)
	if match.TournamentID != nil {
		room := realtime.TournamentRoom(*match.TournamentID)
		message.RoomID = room
		s.notifier.BroadcastToRoom(room, message)
	}
}

// formatSetScore превращает пару значений в строку вида "6-3".
// Пустой сет (оба значения отсутствуют) — это nil.
func formatSetScore(set SetScoreInput) (*string, error) {
	if set.ScoreA == nil && set.ScoreB == nil {
		return nil, nil
	}
	if set.ScoreA == nil || set.ScoreB == nil {
		return nil, ErrIncompleteSetScore
	}
	if *set.ScoreA < 0 || *set.ScoreB < 0 {
		return nil, ErrInvalidSetScore
	}
	formatted := fmt.Sprintf("%d-%d", *set.ScoreA, *set.ScoreB)
	return &formatted, nil
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchAlreadyScored):
		return ErrMatchAlreadyScored
	case errors.Is(err, repositories.ErrMatchNotScored):
		return ErrMatchNotScored
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	}
	return err
}

func normalizeOptional(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
