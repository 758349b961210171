package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/club-padel/admin-api/models"
	"github.com/club-padel/admin-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func newAuthServiceEnv(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, logger), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	service, _ := newAuthServiceEnv(t)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "  Socio@Club.ES ",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)
	assert.Equal(t, "socio@club.es", user.Email)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.Empty(t, user.PasswordHash)

	logged, err := service.Login(context.Background(), LoginInput{
		Email:    "socio@club.es",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	service, _ := newAuthServiceEnv(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "socio@club.es",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), LoginInput{
		Email:    "socio@club.es",
		Password: "otra-contraseña",
	})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	service, _ := newAuthServiceEnv(t)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "nadie@club.es",
		Password: "lo-que-sea",
	})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	service, _ := newAuthServiceEnv(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "socio@club.es",
		Password: "corta",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _ := newAuthServiceEnv(t)

	input := RegisterInput{Email: "socio@club.es", Password: "contraseña-larga"}
	_, err := service.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	service, repo := newAuthServiceEnv(t)

	require.NoError(t, service.EnsureAdmin(context.Background(), "Admin@Club.ES", "clave-de-admin"))

	admin, err := repo.GetByEmail(context.Background(), "admin@club.es")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// повторный запуск не создаёт и не перезаписывает
	require.NoError(t, service.EnsureAdmin(context.Background(), "admin@club.es", "clave-distinta"))
	again, err := repo.GetByEmail(context.Background(), "admin@club.es")
	require.NoError(t, err)
	assert.Equal(t, admin.PasswordHash, again.PasswordHash)
}

func TestAuthService_EnsureAdmin_NotConfigured(t *testing.T) {
	service, repo := newAuthServiceEnv(t)

	require.NoError(t, service.EnsureAdmin(context.Background(), "", ""))
	assert.Empty(t, repo.users)
}
