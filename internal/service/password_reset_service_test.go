package service

import (
	"context"
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func resetFixture(t *testing.T) (*userRepoStub, *profileRepoStub) {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("oldpass1"), bcrypt.MinCost)
	require.NoError(t, err)
	secretHash, err := bcrypt.GenerateFromPassword([]byte("lighthouse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "maria_p" {
			return &models.User{ID: 1, Username: "maria_p", Password: string(passwordHash)}, nil
		}
		return nil, nil
	}

	profiles := noopProfileRepo()
	profiles.getByUserIDFn = func(_ context.Context, userID uint) (*models.Profile, error) {
		return &models.Profile{ID: 1, UserID: userID, SecretWord: string(secretHash)}, nil
	}

	return users, profiles
}

func TestPasswordResetService_VerifySecretWord(t *testing.T) {
	users, profiles := resetFixture(t)
	svc := NewPasswordResetService(users, profiles)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, svc.VerifySecretWord(ctx, "maria_p", "lighthouse"))
	})

	t.Run("Unknown User And Wrong Word Get Identical Rejections", func(t *testing.T) {
		errGhost := svc.VerifySecretWord(ctx, "ghost", "lighthouse")
		errWrong := svc.VerifySecretWord(ctx, "maria_p", "windmill")

		require.Error(t, errGhost)
		require.Error(t, errWrong)
		assert.Equal(t, errGhost.Error(), errWrong.Error(),
			"the endpoint must not reveal whether the username exists")

		var appErr *models.AppError
		require.ErrorAs(t, errGhost, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestPasswordResetService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Overwrites Hash", func(t *testing.T) {
		users, profiles := resetFixture(t)
		var saved *models.User
		users.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewPasswordResetService(users, profiles)

		err := svc.Reset(ctx, "maria_p", "lighthouse", "newpass99", "newpass99")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("newpass99")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("oldpass1")))
	})

	t.Run("Secret Word Re-Verified On Second Step", func(t *testing.T) {
		users, profiles := resetFixture(t)
		users.updateFn = func(context.Context, *models.User) error {
			t.Fatal("password must not change when the secret word is wrong")
			return nil
		}
		svc := NewPasswordResetService(users, profiles)

		err := svc.Reset(ctx, "maria_p", "windmill", "newpass99", "newpass99")
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Confirm Mismatch", func(t *testing.T) {
		users, profiles := resetFixture(t)
		svc := NewPasswordResetService(users, profiles)

		err := svc.Reset(ctx, "maria_p", "lighthouse", "newpass99", "different99")
		require.Error(t, err)
	})

	t.Run("Weak New Password", func(t *testing.T) {
		users, profiles := resetFixture(t)
		svc := NewPasswordResetService(users, profiles)

		err := svc.Reset(ctx, "maria_p", "lighthouse", "short", "short")
		require.Error(t, err)
	})
}
