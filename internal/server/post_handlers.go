package server

import (
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/v1/postlist/
// @Summary List posts
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{posts=array,count=int}
// @Security BearerAuth
// @Router /api/v1/postlist/ [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	out := newPostResponses(posts)
	return c.JSON(fiber.Map{"posts": out, "count": len(out)})
}

// CreatePost handles POST /api/v1/postlist/
// @Summary Create a post
// @Description Tag names are resolved to existing tags or created on the fly
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "New post"
// @Success 201 {object} object{post=object}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/postlist/ [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": newPostResponse(post)})
}

// UpdatePost handles PUT /api/v1/postlist/:id
// @Summary Update a post
// @Description Partial update; a provided tag list replaces the post's tags wholesale. Owner or staff only.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Changes"
// @Success 200 {object} object{post=object}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/postlist/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "ID")
	if err != nil {
		return nil
	}

	var req service.UpdatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), currentUserID(c), postID, req)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": newPostResponse(post)})
}

// DeletePost handles DELETE /api/v1/postlist/:id
// @Summary Delete a post
// @Description Owner or staff only; deleting an absent post is a 404
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{detail=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/postlist/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "ID")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Post deleted"})
}

// FilterPosts handles GET /posts/
// @Summary Filtered public feed
// @Description Repeated tags params compose with AND; title matches as a case-insensitive substring
// @Tags posts
// @Produce json
// @Param tags query []string false "Tag names, repeatable"
// @Param title query string false "Title substring"
// @Success 200 {object} object{posts=array,count=int}
// @Router /posts/ [get]
func (s *Server) FilterPosts(c *fiber.Ctx) error {
	var query struct {
		Tags  []string `query:"tags"`
		Title string   `query:"title"`
	}
	if err := c.QueryParser(&query); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid query parameters"))
	}

	posts, err := s.postService.Filter(c.UserContext(), query.Tags, query.Title)
	if err != nil {
		return respondAppError(c, err)
	}
	out := newPostResponses(posts)
	return c.JSON(fiber.Map{"posts": out, "count": len(out)})
}
