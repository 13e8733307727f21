package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/utils"
)

func TestUserServiceCreateAndAuthenticate(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", usersCollection)
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "Ana@Example.com", "111", "secret-password", models.RoleClient)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email, "emails are normalized to lower case")
	assert.NotEqual(t, "secret-password", user.PasswordHash)

	_, err = svc.CreateUser(ctx, "Other", "ana@example.com", "", "another-password", models.RoleClient)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Authenticate(ctx, "ana@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserServiceToggleFavorite(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", usersCollection)
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Bruno", "bruno@example.com", "", "secret-password", models.RoleOwner)
	require.NoError(t, err)

	favs, err := svc.ToggleFavorite(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, favs)

	favs, err = svc.ToggleFavorite(ctx, user.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, favs)

	// Toggling again removes.
	favs, err = svc.ToggleFavorite(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, favs)
}

func TestUserServiceSoftDelete(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", usersCollection)
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Carla", "carla@example.com", "", "secret-password", models.RoleClient)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.FindUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
