package models

import "time"

// MatchWinner — тройное состояние результата матча.
type MatchWinner string

const (
	WinnerPending MatchWinner = "pending"
	WinnerSideA   MatchWinner = "A"
	WinnerSideB   MatchWinner = "B"
)

// MatchSlot — одно из четырёх мест в матче. PlayerID — внешний ключ
// (ON DELETE SET NULL), Name — снимок имени на момент создания матча,
// чтобы удаление игрока не ломало историю.
type MatchSlot struct {
	PlayerID *int   `json:"player_id,omitempty"`
	Name     string `json:"name"`
}

// Match — парный матч: пара A (слоты 1A/1B) против пары B (слоты 2A/2B).
// TournamentID == nil означает товарищеский матч (amistoso).
type Match struct {
	ID           int         `json:"id"`
	TournamentID *int        `json:"tournament_id,omitempty"`
	RoundName    *string     `json:"round_name,omitempty"`
	Player1A     MatchSlot   `json:"player_1_a"`
	Player1B     MatchSlot   `json:"player_1_b"`
	Player2A     MatchSlot   `json:"player_2_a"`
	Player2B     MatchSlot   `json:"player_2_b"`
	Court        *string     `json:"court,omitempty"`
	Place        *string     `json:"place,omitempty"`
	StartTime    *time.Time  `json:"start_time,omitempty"`
	ScoreSet1    *string     `json:"score_set1,omitempty"`
	ScoreSet2    *string     `json:"score_set2,omitempty"`
	ScoreSet3    *string     `json:"score_set3,omitempty"`
	Winner       MatchWinner `json:"winner"`
	CreatedAt    time.Time   `json:"created_at"`

	// Имя турнира, подгружается JOIN'ом при листинге.
	TournamentName *string `json:"tournament_name,omitempty"`
}

// WinnerSlots возвращает слоты записанной победившей пары.
// Для матча в состоянии pending победителей нет.
func (m *Match) WinnerSlots() ([2]MatchSlot, bool) {
	switch m.Winner {
	case WinnerSideA:
		return [2]MatchSlot{m.Player1A, m.Player1B}, true
	case WinnerSideB:
		return [2]MatchSlot{m.Player2A, m.Player2B}, true
	}
	return [2]MatchSlot{}, false
}
