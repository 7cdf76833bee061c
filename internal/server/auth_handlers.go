package server

import (
	"errors"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /register/
// @Summary Register a new account
// @Description Create a user and its profile; avatar comes from the optional URL or the default image
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration form"
// @Success 201 {object} object{user=object}
// @Failure 400 {object} models.FieldErrorResponse
// @Router /register/ [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.registrationService.Register(c.UserContext(), req)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": newUserResponse(user),
	})
}

// ObtainToken handles POST /api/token/
// @Summary Obtain a JWT pair
// @Description Exchange username and password for access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Credentials"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Router /api/token/ [post]
func (s *Server) ObtainToken(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.tokenService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}

	pair, err := s.tokenService.IssuePair(user)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(pair)
}

// RefreshToken handles POST /api/token/refresh/
// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /api/token/refresh/ [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	access, err := s.tokenService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

// VerifyToken handles POST /api/token/verify/
// @Summary Verify a token
// @Description 200 when the token is valid; 401 distinguishes expired from invalid
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Token to verify"
// @Success 200 {object} object{valid=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /api/token/verify/ [post]
func (s *Server) VerifyToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}

	if _, err := s.tokenService.Parse(req.Token); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// DecodeToken handles POST /get-user-id/
// @Summary Decode a token into its account
// @Description Returns the token owner's fields, staff flag, posts and absolute avatar URL
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Token to decode"
// @Success 200 {object} object{user=object,posts=array,avatar=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /get-user-id/ [post]
func (s *Server) DecodeToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}

	claims, err := s.tokenService.Parse(req.Token)
	if err != nil {
		return respondAppError(c, err)
	}

	user, err := s.userRepo.GetByIDWithPosts(c.UserContext(), claims.UserID)
	if err != nil {
		return respondAppError(c, err)
	}

	avatar := ""
	profile, profErr := s.profileRepo.GetByUserID(c.UserContext(), user.ID)
	if profErr == nil {
		avatar = absoluteAvatarURL(c, profile.Avatar)
	} else {
		var appErr *models.AppError
		if !errors.As(profErr, &appErr) || appErr.Code != "NOT_FOUND" {
			return respondAppError(c, profErr)
		}
	}

	posts := make([]*models.Post, 0, len(user.Posts))
	for i := range user.Posts {
		posts = append(posts, &user.Posts[i])
	}

	return c.JSON(fiber.Map{
		"user":   newUserResponse(user),
		"posts":  newPostResponses(posts),
		"avatar": avatar,
	})
}

// PasswordResetRequest handles POST /password_reset_request/
// @Summary Verify username and secret word
// @Description First step of recovery; unknown usernames and wrong words get the same rejection
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,secret_word=string} true "Identity proof"
// @Success 200 {object} object{detail=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password_reset_request/ [post]
func (s *Server) PasswordResetRequest(c *fiber.Ctx) error {
	var req struct {
		Username   string `json:"username"`
		SecretWord string `json:"secret_word"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.passwordResetService.VerifySecretWord(c.UserContext(), req.Username, req.SecretWord); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Secret word verified"})
}

// PasswordReset handles POST /password_reset/
// @Summary Reset the password
// @Description Second step of recovery; the secret word is verified again here
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,secret_word=string,new_password=string,confirm_password=string} true "Reset form"
// @Success 200 {object} object{detail=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password_reset/ [post]
func (s *Server) PasswordReset(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username"`
		SecretWord      string `json:"secret_word"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.passwordResetService.Reset(c.UserContext(),
		req.Username, req.SecretWord, req.NewPassword, req.ConfirmPassword); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Password has been reset"})
}
