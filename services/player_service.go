package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
	"github.com/club-padel/admin-api/storage"
	"github.com/google/uuid"
)

type CreatePlayerInput struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
	Email *string `json:"email"`
}

type UpdatePlayerInput struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
	Email *string `json:"email"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	// Ranking — игроки по убыванию очков; имя разрешает ничьи детерминированно.
	Ranking(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
	UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader, logger: logger}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		Name:  name,
		Level: input.Level,
		Email: normalizeOptional(input.Email),
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return s.withAvatarURL(player), nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return s.withAvatarURL(player), nil
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withAvatarURLs(players), nil
}

func (s *playerService) Ranking(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.ListRanking(ctx, 0)
	if err != nil {
		return nil, err
	}
	return s.withAvatarURLs(players), nil
}

func (s *playerService) Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	// Очки через Update не меняются: рейтинг двигает только результат матча.
	player.Name = name
	player.Level = input.Level
	player.Email = normalizeOptional(input.Email)

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return s.withAvatarURL(player), nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return mapPlayerRepoError(err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return mapPlayerRepoError(err)
	}

	if player.AvatarKey != nil {
		if err := s.uploader.Delete(ctx, *player.AvatarKey); err != nil {
			s.logger.Warn("failed to delete avatar of removed player",
				slog.Int("player_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	key := fmt.Sprintf("avatars/%d/%s%s", id, uuid.NewString(), extensionForContentType(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", id, err)
	}

	oldKey := player.AvatarKey
	if err := s.playerRepo.UpdateAvatarKey(ctx, id, &result.Key); err != nil {
		// Запись не обновилась — убираем осиротевший объект.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned avatar object",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, mapPlayerRepoError(err)
	}

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar object",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	player.AvatarKey = &result.Key
	return s.withAvatarURL(player), nil
}

func (s *playerService) withAvatarURL(player *models.Player) *models.Player {
	if player.AvatarKey != nil {
		url := s.uploader.GetPublicURL(*player.AvatarKey)
		player.AvatarURL = &url
	}
	return player
}

func (s *playerService) withAvatarURLs(players []models.Player) []models.Player {
	for i := range players {
		s.withAvatarURL(&players[i])
	}
	return players
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerNameConflict
	}
	return err
}
