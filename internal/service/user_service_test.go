package service

import (
	"context"
	"testing"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []RegisterInput{
			{Name: "", Email: "a@example.com", Password: "secret1"},
			{Name: "Mallory", Email: "not-an-email", Password: "secret1"},
			{Name: "Mallory", Email: "m@example.com", Password: "short"},
		}
		for _, in := range cases {
			_, err := svc.Register(ctx, in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		}
	})

	t.Run("defaults the avatar from the email", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterInput{
			Name:     "Niaj",
			Email:    "niaj@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Contains(t, user.Avatar, "gravatar.com/avatar/")
		assert.NotEqual(t, "secret1", user.Password)
	})

	t.Run("keeps a supplied avatar", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterInput{
			Name:     "Olivia",
			Email:    "olivia@example.com",
			Password: "secret1",
			Avatar:   "https://example.com/o.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/o.png", user.Avatar)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Name:     "Niaj Again",
			Email:    "niaj@example.com",
			Password: "secret1",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name:     "Peggy",
		Email:    "peggy@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "peggy@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "peggy@example.com", "wrong")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "whatever")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})
}
