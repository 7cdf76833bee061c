package service

import (
	"context"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/middleware"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	SecretWord      string `json:"secret_word"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	AvatarURL       string `json:"avatar,omitempty"`
}

// RegistrationService creates new accounts: a user row plus its profile in
// one transaction, with hashed password and secret word.
type RegistrationService struct {
	userRepo repository.UserRepository
	avatars  *AvatarService
}

func NewRegistrationService(userRepo repository.UserRepository, avatars *AvatarService) *RegistrationService {
	return &RegistrationService{userRepo: userRepo, avatars: avatars}
}

// Validate checks every field and returns per-field messages; an empty map
// means the input is acceptable.
func (s *RegistrationService) Validate(in RegisterInput) map[string]string {
	fields := make(map[string]string)

	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if in.Password != in.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}
	if err := validation.ValidateSecretWord(in.SecretWord); err != nil {
		fields["secret_word"] = err.Error()
	}

	return fields
}

// Register creates the user and profile. The avatar comes from the supplied
// URL when present, otherwise the bundled default; a failed download is
// logged and swallowed so registration still succeeds.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if fields := s.Validate(in); len(fields) > 0 {
		return nil, &FieldErrors{Fields: fields}
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &FieldErrors{Fields: map[string]string{"username": "username is already taken"}}
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &FieldErrors{Fields: map[string]string{"email": "email is already registered"}}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	secretHash, err := bcrypt.GenerateFromPassword([]byte(in.SecretWord), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	avatar := s.avatars.DefaultPath()
	if in.AvatarURL != "" {
		fetched, fetchErr := s.avatars.FetchFromURL(ctx, in.AvatarURL)
		if fetchErr != nil {
			middleware.Logger.WarnContext(ctx, "avatar download failed, falling back to default",
				"url", in.AvatarURL, "error", fetchErr.Error())
		} else {
			avatar = fetched
		}
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(passwordHash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	profile := &models.Profile{
		Avatar:     avatar,
		SecretWord: string(secretHash),
	}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// FieldErrors is a validation failure carrying per-field messages for the
// registration and reset forms.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	return "validation failed"
}
