package service

import (
	"context"
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/config"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAvatarService(t *testing.T) *AvatarService {
	t.Helper()
	return NewAvatarService(&config.Config{
		MediaDir:              t.TempDir(),
		DefaultAvatarPath:     "media/avatars/default_avatar.jpg",
		AvatarMaxFetchSizeMB:  5,
		AvatarFetchTimeoutSec: 1,
	})
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "maria_p",
		Email:           "maria@example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
		SecretWord:      "lighthouse",
		FirstName:       "Maria",
		LastName:        "Petrova",
	}
}

func TestRegistrationService_Validate(t *testing.T) {
	svc := NewRegistrationService(noopUserRepo(), testAvatarService(t))

	t.Run("Valid Input", func(t *testing.T) {
		assert.Empty(t, svc.Validate(validRegisterInput()))
	})

	t.Run("Password Mismatch", func(t *testing.T) {
		in := validRegisterInput()
		in.ConfirmPassword = "different1"
		fields := svc.Validate(in)
		assert.Contains(t, fields, "confirm_password")
	})

	t.Run("Multiple Failures Reported Together", func(t *testing.T) {
		fields := svc.Validate(RegisterInput{
			Username: "x",
			Email:    "not-an-email",
			Password: "short",
		})
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "secret_word")
	})
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Hashes Credentials", func(t *testing.T) {
		var createdUser *models.User
		var createdProfile *models.Profile

		repo := noopUserRepo()
		repo.createWithProfileFn = func(_ context.Context, u *models.User, p *models.Profile) error {
			u.ID = 1
			createdUser = u
			createdProfile = p
			return nil
		}
		svc := NewRegistrationService(repo, testAvatarService(t))

		in := validRegisterInput()
		user, err := svc.Register(ctx, in)
		require.NoError(t, err)
		require.NotNil(t, createdUser)
		require.NotNil(t, createdProfile)

		assert.NotEqual(t, in.Password, createdUser.Password, "password is stored hashed")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(createdUser.Password), []byte(in.Password)))
		assert.NotEqual(t, in.SecretWord, createdProfile.SecretWord, "secret word is stored hashed")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(createdProfile.SecretWord), []byte(in.SecretWord)))
		assert.Equal(t, "media/avatars/default_avatar.jpg", createdProfile.Avatar)
		assert.NotNil(t, user.Profile)
	})

	t.Run("Mismatched Confirm Creates Nothing", func(t *testing.T) {
		repo := noopUserRepo()
		repo.createWithProfileFn = func(context.Context, *models.User, *models.Profile) error {
			t.Fatal("no user row may be created on validation failure")
			return nil
		}
		svc := NewRegistrationService(repo, testAvatarService(t))

		in := validRegisterInput()
		in.ConfirmPassword = "other-password1"
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		var fieldErrs *FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs.Fields, "confirm_password")
	})

	t.Run("Taken Username", func(t *testing.T) {
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 9, Username: username}, nil
		}
		svc := NewRegistrationService(repo, testAvatarService(t))

		_, err := svc.Register(ctx, validRegisterInput())
		var fieldErrs *FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs.Fields, "username")
	})

	t.Run("Unreachable Avatar URL Falls Back To Default", func(t *testing.T) {
		repo := noopUserRepo()
		repo.createWithProfileFn = func(_ context.Context, u *models.User, _ *models.Profile) error {
			u.ID = 1
			return nil
		}
		svc := NewRegistrationService(repo, testAvatarService(t))

		in := validRegisterInput()
		in.AvatarURL = "http://127.0.0.1:1/avatar.png"
		user, err := svc.Register(ctx, in)
		require.NoError(t, err, "registration survives a failed avatar download")
		assert.Equal(t, "media/avatars/default_avatar.jpg", user.Profile.Avatar)
	})
}
