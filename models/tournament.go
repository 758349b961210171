package models

import "time"

// TournamentStatus соответствует ENUM в БД. Статусы клуба остались испанскими,
// как их видят администраторы.
type TournamentStatus string

const (
	StatusAbierto    TournamentStatus = "abierto"    // открыта запись
	StatusEnCurso    TournamentStatus = "en_curso"   // идёт
	StatusFinalizado TournamentStatus = "finalizado" // завершён
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusAbierto, StatusEnCurso, StatusFinalizado:
		return true
	}
	return false
}

type Tournament struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	StartDate time.Time        `json:"start_date"`
	Status    TournamentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
