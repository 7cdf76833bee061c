package service

import (
	"context"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/middleware"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// genericResetRejection is returned for both unknown usernames and wrong
// secret words, so the endpoint never reveals which part failed.
const genericResetRejection = "Username and secret word do not match"

// PasswordResetService implements the two-step secret-word recovery flow.
// Both steps verify the secret word; passing step one grants nothing that
// step two does not re-check.
type PasswordResetService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewPasswordResetService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *PasswordResetService {
	return &PasswordResetService{userRepo: userRepo, profileRepo: profileRepo}
}

// VerifySecretWord checks that the username exists and the secret word
// matches its profile. The rejection is identical in both failure cases.
func (s *PasswordResetService) VerifySecretWord(ctx context.Context, username, secretWord string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		middleware.PasswordResets.WithLabelValues("request", "error").Inc()
		return err
	}
	if user == nil {
		middleware.PasswordResets.WithLabelValues("request", "rejected").Inc()
		return models.NewValidationError(genericResetRejection)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		middleware.PasswordResets.WithLabelValues("request", "error").Inc()
		return err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(profile.SecretWord), []byte(secretWord)); cmpErr != nil {
		middleware.PasswordResets.WithLabelValues("request", "rejected").Inc()
		return models.NewValidationError(genericResetRejection)
	}

	middleware.PasswordResets.WithLabelValues("request", "verified").Inc()
	return nil
}

// Reset re-verifies the secret word and overwrites the password hash.
func (s *PasswordResetService) Reset(ctx context.Context, username, secretWord, newPassword, confirmPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	if newPassword != confirmPassword {
		return models.NewValidationError("passwords do not match")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		middleware.PasswordResets.WithLabelValues("reset", "error").Inc()
		return err
	}
	if user == nil {
		middleware.PasswordResets.WithLabelValues("reset", "rejected").Inc()
		return models.NewValidationError(genericResetRejection)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		middleware.PasswordResets.WithLabelValues("reset", "error").Inc()
		return err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(profile.SecretWord), []byte(secretWord)); cmpErr != nil {
		middleware.PasswordResets.WithLabelValues("reset", "rejected").Inc()
		return models.NewValidationError(genericResetRejection)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		middleware.PasswordResets.WithLabelValues("reset", "error").Inc()
		return models.NewInternalError(err)
	}

	user.Password = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		middleware.PasswordResets.WithLabelValues("reset", "error").Inc()
		return err
	}

	middleware.PasswordResets.WithLabelValues("reset", "success").Inc()
	middleware.Logger.InfoContext(ctx, "password reset completed", "username", username)
	return nil
}
