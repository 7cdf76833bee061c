package server

import (
	"io"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserList handles GET /api/v1/userlist/
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=array,count=int}
// @Security BearerAuth
// @Router /api/v1/userlist/ [get]
func (s *Server) UserList(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out, "count": len(out)})
}

// GetProfile handles GET /profile/
// @Summary Own profile
// @Description Avatar as an absolute URL plus the follower count
// @Tags profile
// @Produce json
// @Success 200 {object} object{user=object,avatar=string,followers_count=int}
// @Security BearerAuth
// @Router /profile/ [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	profile, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":            newUserResponse(user),
		"avatar":          absoluteAvatarURL(c, profile.Avatar),
		"followers_count": profile.FollowersCount,
	})
}

// UpdateAvatar handles POST /update_avatar/
// @Summary Replace the avatar
// @Description Accepts either a JSON body with an avatar URL or a multipart upload with an "avatar" file field
// @Tags profile
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 200 {object} object{avatar=string}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /update_avatar/ [post]
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var path string
	if file, err := c.FormFile("avatar"); err == nil {
		f, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable upload"))
		}
		content, readErr := io.ReadAll(f)
		_ = f.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable upload"))
		}
		path, err = s.avatarService.SaveUpload(content)
		if err != nil {
			return respondAppError(c, err)
		}
	} else {
		var req struct {
			Avatar string `json:"avatar"`
		}
		if parseErr := c.BodyParser(&req); parseErr != nil || req.Avatar == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Provide an avatar file or URL"))
		}
		fetched, fetchErr := s.avatarService.FetchFromURL(c.UserContext(), req.Avatar)
		if fetchErr != nil {
			return respondAppError(c, fetchErr)
		}
		path = fetched
	}

	profile, err := s.userService.UpdateAvatar(c.UserContext(), userID, path)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"avatar": absoluteAvatarURL(c, profile.Avatar)})
}

// UpdateProfile handles PUT /profile/update/
// @Summary Update name and optionally the password
// @Description A password change requires the current password and a matching confirmation
// @Tags profile
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile changes"
// @Success 200 {object} object{user=object}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/update/ [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": newUserResponse(user)})
}

// ProfileByPost handles GET /user/profile_by_post/:post_id/
// @Summary Author profile for a post
// @Description The post's owner, their avatar and their full post list
// @Tags profile
// @Produce json
// @Param post_id path int true "Post ID"
// @Success 200 {object} object{user=object,avatar=string,posts=array}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/profile_by_post/{post_id}/ [get]
func (s *Server) ProfileByPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetByID(c.UserContext(), postID)
	if err != nil {
		return respondAppError(c, err)
	}

	owner, err := s.userService.GetUserWithPosts(c.UserContext(), post.UserID)
	if err != nil {
		return respondAppError(c, err)
	}
	profile, err := s.userService.GetProfile(c.UserContext(), post.UserID)
	if err != nil {
		return respondAppError(c, err)
	}

	posts := make([]*models.Post, 0, len(owner.Posts))
	for i := range owner.Posts {
		posts = append(posts, &owner.Posts[i])
	}

	return c.JSON(fiber.Map{
		"user":   newUserResponse(owner),
		"avatar": absoluteAvatarURL(c, profile.Avatar),
		"posts":  newPostResponses(posts),
	})
}

// FollowUser handles POST /profile/follow/:user_id/
// @Summary Follow a user
// @Tags profile
// @Produce json
// @Param user_id path int true "Target user ID"
// @Success 200 {object} object{detail=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/follow/{user_id}/ [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "user_id", "user ID")
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Now following"})
}

// UnfollowUser handles DELETE /profile/follow/:user_id/
// @Summary Unfollow a user
// @Tags profile
// @Produce json
// @Param user_id path int true "Target user ID"
// @Success 200 {object} object{detail=string}
// @Security BearerAuth
// @Router /profile/follow/{user_id}/ [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "user_id", "user ID")
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Unfollowed"})
}

// DeleteUser handles DELETE /delete_user/:user_id/
// @Summary Delete an account (staff only)
// @Description Cascades to the account's posts and profile
// @Tags admin
// @Produce json
// @Param user_id path int true "Target user ID"
// @Success 200 {object} object{detail=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /delete_user/{user_id}/ [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "user_id", "user ID")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), targetID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "User deleted"})
}
