package repository

import (
	"context"
	"errors"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/cache"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"gorm.io/gorm"
)

// PostFilter holds the optional criteria of the filtered post query.
// Tags compose with AND: a post must carry every listed tag. Title is a
// case-insensitive substring match. Both criteria intersect.
type PostFilter struct {
	Tags  []string
	Title string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Filter(ctx context.Context, f PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post, tags []models.Tag, replaceTags bool) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(post).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Model(post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.Tags = tags
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Filter returns posts whose tag set is a superset of f.Tags and whose title
// contains f.Title case-insensitively. Empty criteria are skipped; an empty
// filter returns everything.
func (r *postRepository) Filter(ctx context.Context, f PostFilter) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})

	if len(f.Tags) > 0 {
		q = q.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", f.Tags).
			Group("posts.id").
			Having("COUNT(DISTINCT tags.name) = ?", len(f.Tags))
	}

	if f.Title != "" {
		q = q.Where("posts.title ILIKE ?", "%"+f.Title+"%")
	}

	var posts []*models.Post
	if err := q.
		Preload("User").
		Preload("Tags").
		Order("posts.created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update saves the post's fields. When replaceTags is set the tag set is
// replaced wholesale; otherwise existing associations are left untouched.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tags []models.Tag, replaceTags bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Save(post).Error; err != nil {
			return err
		}
		if !replaceTags {
			return nil
		}
		return tx.Model(post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if replaceTags {
		post.Tags = tags
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
