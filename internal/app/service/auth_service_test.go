package service

import (
	"testing"
	"time"

	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/db"
	"github.com/stickerverse/sticker-catalog/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	return authService, userRepo
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			wantErr:  nil,
		},
		{
			name:     "Duplicate email with different case",
			email:    "TEST@example.com",
			password: "password456",
			userName: "Another User",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, model.RoleUser, user.Role)
			assert.NotEqual(t, tt.password, user.PasswordHash)

			claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, util.TokenTypeAccess, claims.TokenType)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("login@example.com", "password123", "Login User")
	require.NoError(t, err)

	user, tokens, err := authService.Login("login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)

	_, _, err = authService.Login("login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetMyRole(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	role, err := authService.GetMyRole("missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, role)

	_, _, err = authService.Register("role@example.com", "password123", "Role")
	require.NoError(t, err)

	role, err = authService.GetMyRole("role@example.com")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, model.RoleUser, *role)
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	status, err := authService.BootstrapAdmin("ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, BootstrapUserNotFound, status)

	_, _, err = authService.Register("first@example.com", "password123", "First")
	require.NoError(t, err)
	_, _, err = authService.Register("second@example.com", "password123", "Second")
	require.NoError(t, err)

	status, err = authService.BootstrapAdmin("first@example.com")
	require.NoError(t, err)
	assert.Equal(t, BootstrapUpgraded, status)

	status, err = authService.BootstrapAdmin("first@example.com")
	require.NoError(t, err)
	assert.Equal(t, BootstrapAlreadyAdmin, status)

	_, err = authService.BootstrapAdmin("second@example.com")
	assert.ErrorIs(t, err, ErrBootstrapClosed)

	role, err := authService.GetMyRole("second@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, *role)
}
