package repository_test

import (
	"context"
	"testing"

	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EnsureUserCreates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.EnsureUser(ctx, "jsmith", "Jane Smith", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jsmith", user.Username)
	assert.Equal(t, "Jane Smith", user.DisplayName)
	assert.True(t, user.IsActive)

	found, err := repo.GetByUsername(ctx, "jsmith")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_EnsureUserIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	first, err := repo.EnsureUser(ctx, "jsmith", "Jane Smith", "jane@example.com")
	require.NoError(t, err)

	second, err := repo.EnsureUser(ctx, "jsmith", "Jane Smith", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUserRepository_EnsureUserRefreshesProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.EnsureUser(ctx, "jsmith", "Jane Smith", "jane@example.com")
	require.NoError(t, err)

	updated, err := repo.EnsureUser(ctx, "jsmith", "Jane A. Smith", "jane.smith@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Jane A. Smith", updated.DisplayName)
	assert.Equal(t, "jane.smith@example.com", updated.Email)

	// Empty token claims keep the stored values
	kept, err := repo.EnsureUser(ctx, "jsmith", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Jane A. Smith", kept.DisplayName)
	assert.Equal(t, "jane.smith@example.com", kept.Email)
}

func TestUserRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "zoe")
	testutil.CreateTestUser(t, db, "adam")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "adam", users[0].Username)
	assert.Equal(t, "zoe", users[1].Username)
}
