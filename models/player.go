package models

import "time"

// Player представляет игрока клуба и его позицию в рейтинге.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Level     float64   `json:"level"`
	Points    int       `json:"points"`
	Email     *string   `json:"email,omitempty"`
	AvatarKey *string   `json:"-"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultPlayerLevel назначается игрокам, созданным при одобрении инскрипции.
const DefaultPlayerLevel = 4.0
