package server

import (
	"errors"
	"strings"
	"time"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten;
// callers should then return nil.
func (s *Server) parseID(c *fiber.Ctx, param, label string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID reads the user ID placed in locals by the auth gate.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// isStaff checks whether the given user has staff privileges.
func (s *Server) isStaff(c *fiber.Ctx, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(c.Context()).Select("is_staff").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsStaff, nil
}

// respondAppError maps an AppError code to its HTTP status and renders it.
// FieldErrors from the services render as the per-field 400 shape.
func respondAppError(c *fiber.Ctx, err error) error {
	var fieldErrs *service.FieldErrors
	if errors.As(err, &fieldErrs) {
		return models.RespondWithFieldErrors(c, fieldErrs.Fields)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := fiber.StatusInternalServerError
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED", "EXPIRED_CREDENTIAL":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		}
		return models.RespondWithError(c, status, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// userResponse is the public view of an account.
type userResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

// postResponse is the wire shape of a post: tags flatten to their names.
type postResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	Author    string    `json:"author,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPostResponse(p *models.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.UserID,
		Tags:      p.TagNames(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.User != nil {
		resp.Author = p.User.Username
	}
	return resp
}

func newPostResponses(posts []*models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostResponse(p))
	}
	return out
}

// absoluteAvatarURL turns a stored avatar path into a URL the client can
// load directly. Paths that already carry a scheme pass through.
func absoluteAvatarURL(c *fiber.Ctx, avatar string) string {
	if avatar == "" {
		return ""
	}
	if strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "https://") {
		return avatar
	}
	return c.BaseURL() + "/" + strings.TrimPrefix(avatar, "/")
}
