package services

import "errors"

// Ошибки сервисного слоя, маппятся на HTTP-статусы в handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация и бизнес-правила
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrPlayerNameRequired       = errors.New("player name is required")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrMatchPlayersRequired     = errors.New("match requires four distinct players")
	ErrInvalidWinningSide       = errors.New("winning side must be A or B")
	ErrIncompleteSetScore       = errors.New("set score requires both values or neither")
	ErrInvalidSetScore          = errors.New("set score values must be non-negative")
	ErrInvalidTournamentStatus  = errors.New("invalid tournament status provided")
	ErrRegistrationNotOpen      = errors.New("tournament registration is not open")
	ErrRegistrationNameRequired = errors.New("registration requires at least one player name")
	ErrInvalidCalendarRange     = errors.New("calendar range end must be after start")

	// Состояние матча
	ErrMatchAlreadyScored = errors.New("match already has a recorded winner")
	ErrMatchNotScored     = errors.New("match has no recorded winner to reopen")

	// Конфликты
	ErrPlayerNameConflict          = errors.New("player name is already in use")
	ErrRegistrationAlreadyResolved = errors.New("registration has already been resolved")

	// Аутентификация / авторизация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")

	// Сущности
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")
)
