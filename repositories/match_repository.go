package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/club-padel/admin-api/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchAlreadyScored = errors.New("match already has a recorded winner")
	ErrMatchNotScored     = errors.New("match has no recorded winner")
	ErrMatchPlayerInvalid = errors.New("match references an invalid player or tournament")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Match, error)
	// SetResult записывает сеты и победителя, только если матч ещё pending.
	// Повторный вызов возвращает ErrMatchAlreadyScored, а не двойной кредит.
	SetResult(ctx context.Context, exec SQLExecutor, id int, set1, set2, set3 *string, winner models.MatchWinner) error
	// ClearResult возвращает матч в pending, только если победитель записан.
	// Сеты намеренно не стираются.
	ClearResult(ctx context.Context, exec SQLExecutor, id int) error
	Count(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// Все выборки тянут имя турнира одним LEFT JOIN, как того требует листинг.
const matchSelect = `
	SELECT
		m.id, m.tournament_id, m.round_name,
		m.player_1_a_id, m.player_1_a_name,
		m.player_1_b_id, m.player_1_b_name,
		m.player_2_a_id, m.player_2_a_name,
		m.player_2_b_id, m.player_2_b_name,
		m.court, m.place, m.start_time,
		m.score_set1, m.score_set2, m.score_set3,
		m.winner, m.created_at,
		t.name
	FROM matches m
	LEFT JOIN tournaments t ON m.tournament_id = t.id`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round_name,
			 player_1_a_id, player_1_a_name,
			 player_1_b_id, player_1_b_name,
			 player_2_a_id, player_2_a_name,
			 player_2_b_id, player_2_b_name,
			 court, place, start_time, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID,
		match.RoundName,
		match.Player1A.PlayerID, match.Player1A.Name,
		match.Player1B.PlayerID, match.Player1B.Name,
		match.Player2A.PlayerID, match.Player2A.Name,
		match.Player2B.PlayerID, match.Player2B.Name,
		match.Court,
		match.Place,
		match.StartTime,
		match.Winner,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrMatchPlayerInvalid
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id)

	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]models.Match, error) {
	// Свежие матчи первыми, как на доске "Partidos en Vivo".
	return r.queryMatches(ctx, matchSelect+` ORDER BY m.id DESC`)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	// Порядок создания: внутри раунда сетка строится по id.
	return r.queryMatches(ctx, matchSelect+` WHERE m.tournament_id = $1 ORDER BY m.id ASC`, tournamentID)
}

func (r *postgresMatchRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Match, error) {
	query := matchSelect + ` WHERE m.start_time >= $1 AND m.start_time < $2 ORDER BY m.start_time ASC, m.id ASC`
	return r.queryMatches(ctx, query, from, to)
}

func (r *postgresMatchRepository) SetResult(ctx context.Context, exec SQLExecutor, id int, set1, set2, set3 *string, winner models.MatchWinner) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE matches
		SET score_set1 = $1, score_set2 = $2, score_set3 = $3, winner = $4
		WHERE id = $5 AND winner = $6`

	result, err := exec.ExecContext(ctx, query, set1, set2, set3, winner, id, models.WinnerPending)
	if err != nil {
		return fmt.Errorf("failed to set result for match %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return r.classifyGuardMiss(ctx, exec, id, ErrMatchAlreadyScored)
	}
	return nil
}

func (r *postgresMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE matches SET winner = $1 WHERE id = $2 AND winner <> $1`

	result, err := exec.ExecContext(ctx, query, models.WinnerPending, id)
	if err != nil {
		return fmt.Errorf("failed to clear result for match %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return r.classifyGuardMiss(ctx, exec, id, ErrMatchNotScored)
	}
	return nil
}

// classifyGuardMiss различает "матча нет" и "матч в неподходящем состоянии",
// когда защищённый UPDATE не затронул ни одной строки.
func (r *postgresMatchRepository) classifyGuardMiss(ctx context.Context, exec SQLExecutor, id int, stateErr error) error {
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check match %d existence: %w", id, err)
	}
	if !exists {
		return ErrMatchNotFound
	}
	return stateErr
}

func (r *postgresMatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE winner = $1`, models.WinnerPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending matches: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.RoundName,
		&match.Player1A.PlayerID, &match.Player1A.Name,
		&match.Player1B.PlayerID, &match.Player1B.Name,
		&match.Player2A.PlayerID, &match.Player2A.Name,
		&match.Player2B.PlayerID, &match.Player2B.Name,
		&match.Court,
		&match.Place,
		&match.StartTime,
		&match.ScoreSet1,
		&match.ScoreSet2,
		&match.ScoreSet3,
		&match.Winner,
		&match.CreatedAt,
		&match.TournamentName,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, *match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}
