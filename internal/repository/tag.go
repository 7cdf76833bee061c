package repository

import (
	"context"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// FindOrCreateByNames resolves each name to an existing tag or creates one.
// Names are not unique in the schema; the first match wins.
func (r *tagRepository) FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := r.db.WithContext(ctx).
			Where("name = ?", name).
			FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
