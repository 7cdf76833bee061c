package service

import (
	"context"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/featureflags"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/middleware"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UpdateProfileInput carries the mutable profile fields. The password change
// is optional and requires the current password.
type UpdateProfileInput struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	OldPassword     string  `json:"old_password"`
	NewPassword     string  `json:"new_password"`
	ConfirmPassword string  `json:"confirm_password"`
}

// UserService owns account reads, profile updates, the follower graph and
// admin deletion.
type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	flags       *featureflags.Manager
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, flags *featureflags.Manager) *UserService {
	return &UserService{userRepo: userRepo, profileRepo: profileRepo, flags: flags}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserWithPosts(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByIDWithPosts(ctx, id)
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// UpdateProfile updates name fields and, when a new password is supplied,
// rotates the password after checking the old one.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if in.NewPassword != "" {
		if in.OldPassword == "" {
			return nil, models.NewValidationError("Current password is required to set a new one")
		}
		if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); cmpErr != nil {
			return nil, models.NewUnauthorizedError("Current password is incorrect")
		}
		if err := validation.ValidatePassword(in.NewPassword); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if in.NewPassword != in.ConfirmPassword {
			return nil, models.NewValidationError("passwords do not match")
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, models.NewInternalError(hashErr)
		}
		user.Password = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar stores the new avatar path on the user's profile.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, avatarPath string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Avatar = avatarPath
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Follow subscribes follower to target's profile. Self-follows are rejected.
func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) error {
	if !s.flags.Enabled("follower_graph", followerID) {
		return models.NewForbiddenError("Following is not available")
	}
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	return s.profileRepo.AddFollower(ctx, targetID, followerID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if !s.flags.Enabled("follower_graph", followerID) {
		return models.NewForbiddenError("Following is not available")
	}
	return s.profileRepo.RemoveFollower(ctx, targetID, followerID)
}

// DeleteUser cascades the deletion of the target account. The staff check
// lives in the auth gate; this is the destructive step.
func (s *UserService) DeleteUser(ctx context.Context, targetID uint) error {
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user deleted by staff", "target_user_id", targetID)
	return nil
}
