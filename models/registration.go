package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Registration — заявка на участие в турнире. Второе имя опционально:
// допускается запись без пары.
type Registration struct {
	ID           int                `json:"id"`
	TournamentID int                `json:"tournament_id"`
	Player1Name  string             `json:"player_1_name"`
	Player2Name  *string            `json:"player_2_name,omitempty"`
	Email        *string            `json:"email,omitempty"`
	Phone        *string            `json:"phone,omitempty"`
	Status       RegistrationStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}
