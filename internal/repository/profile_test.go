package repository

import (
	"context"
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	user := createTestUser(t, db, "maria_p")
	ctx := context.Background()

	profile, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, "media/avatars/default_avatar.jpg", profile.Avatar)
	assert.Zero(t, profile.FollowersCount)
}

func TestProfileRepository_GetByUserID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)

	_, err := repo.GetByUserID(context.Background(), 999)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestProfileRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	user := createTestUser(t, db, "maria_p")
	ctx := context.Background()

	profile, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)

	profile.Avatar = "media/avatars/custom.png"
	require.NoError(t, repo.Update(ctx, profile))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "media/avatars/custom.png", got.Avatar)
}

func TestProfileRepository_Followers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	target := createTestUser(t, db, "maria_p")
	follower := createTestUser(t, db, "ivan_k")
	ctx := context.Background()

	require.NoError(t, repo.AddFollower(ctx, target.ID, follower.ID))

	count, err := repo.FollowersCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("Repeat Follow Is Idempotent", func(t *testing.T) {
		require.NoError(t, repo.AddFollower(ctx, target.ID, follower.ID))
		count, err := repo.FollowersCount(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Count Surfaces On Profile Read", func(t *testing.T) {
		profile, err := repo.GetByUserID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, profile.FollowersCount)
	})

	t.Run("Unfollow", func(t *testing.T) {
		require.NoError(t, repo.RemoveFollower(ctx, target.ID, follower.ID))
		count, err := repo.FollowersCount(ctx, target.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Follow Unknown User", func(t *testing.T) {
		err := repo.AddFollower(ctx, 999, follower.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}
