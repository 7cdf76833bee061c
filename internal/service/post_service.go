package service

import (
	"context"
	"strings"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
)

const (
	maxTitleLen    = 200
	maxContentLen  = 20000
	maxTagsPerPost = 10
	maxTagNameLen  = 20
)

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdatePostInput carries a partial post update. Nil pointers mean "leave
// unchanged"; a non-nil Tags slice replaces the tag set wholesale.
type UpdatePostInput struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// PostService owns post CRUD, ownership enforcement and the filtered feed.
type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	userRepo repository.UserRepository
}

func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, tagRepo: tagRepo, userRepo: userRepo}
}

func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 20000 characters)")
	}

	names, err := normalizeTagNames(in.Tags)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.FindOrCreateByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Title: title, Content: content, UserID: authorID}
	if err := s.postRepo.Create(ctx, post, tags); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

// Filter returns the public feed: posts carrying every requested tag whose
// title contains the query, newest first.
func (s *PostService) Filter(ctx context.Context, tags []string, title string) ([]*models.Post, error) {
	names, err := normalizeTagNames(tags)
	if err != nil {
		return nil, err
	}
	return s.postRepo.Filter(ctx, repository.PostFilter{Tags: names, Title: strings.TrimSpace(title)})
}

// Update applies a partial update. Only the owner or staff may modify a post.
func (s *PostService) Update(ctx context.Context, actorID, postID uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, post); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		if len(content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 20000 characters)")
		}
		post.Content = content
	}

	var tags []models.Tag
	replaceTags := in.Tags != nil
	if replaceTags {
		names, err := normalizeTagNames(*in.Tags)
		if err != nil {
			return nil, err
		}
		tags, err = s.tagRepo.FindOrCreateByNames(ctx, names)
		if err != nil {
			return nil, err
		}
	}

	// The preloaded author must not be written back alongside the post.
	post.User = nil
	if err := s.postRepo.Update(ctx, post, tags, replaceTags); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Delete removes the post. Only the owner or staff may delete it.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, post); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) authorize(ctx context.Context, actorID uint, post *models.Post) error {
	if post.UserID == actorID {
		return nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsStaff {
		return models.NewForbiddenError("You can only modify your own posts")
	}
	return nil
}

func normalizeTagNames(raw []string) ([]string, error) {
	if len(raw) > maxTagsPerPost {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}
	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if len(name) > maxTagNameLen {
			return nil, models.NewValidationError("Tag name too long (max 20 characters)")
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
