package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user := createTestUser(t, pool, "jane@example.com")

	t.Run("GetByEmail returns the stored user", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, "custom", got.AuthMethod)
		assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("GetByID returns the stored user", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "jane@example.com", got.Email)
	})

	t.Run("missing user returns nil without error", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.New()

		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})
}

func TestSessionRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user := createTestUser(t, pool, "session@example.com")
	other := createTestUser(t, pool, "other@example.com")

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	newer := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(8 * 24 * time.Hour),
		CreatedAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, newer))

	sessions, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, session.ID, sessions[1].ID)

	sessions, err = repo.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Another user cannot delete the session.
	require.NoError(t, repo.Delete(ctx, other.ID, session.ID))
	got, err = repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, repo.Delete(ctx, user.ID, session.ID))
	got, err = repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, user.ID, session.ID))
}

func TestSessionRepository_CreateUnknownUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(pool, zerolog.Nop())

	err := repo.Create(context.Background(), &model.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create session")
}
