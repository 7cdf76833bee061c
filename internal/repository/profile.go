package repository

import (
	"context"
	"errors"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/cache"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	AddFollower(ctx context.Context, targetUserID, followerUserID uint) error
	RemoveFollower(ctx context.Context, targetUserID, followerUserID uint) error
	FollowersCount(ctx context.Context, userID uint) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// profileCacheRecord carries the profile through the cache together with its
// secret-word hash, which json:"-" strips from the serialized profile.
type profileCacheRecord struct {
	Profile        models.Profile `json:"profile"`
	SecretWordHash string         `json:"secret_word_hash"`
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var rec profileCacheRecord
	key := cache.ProfileKey(userID)

	err := cache.Aside(ctx, key, &rec, cache.ProfileTTL, func() error {
		if err := r.db.WithContext(ctx).
			Select("profiles.*, (SELECT COUNT(*) FROM profile_followers WHERE profile_followers.profile_id = profiles.id) as followers_count").
			Where("user_id = ?", userID).
			First(&rec.Profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", userID)
			}
			return models.NewInternalError(err)
		}
		rec.SecretWordHash = rec.Profile.SecretWord
		return nil
	})

	if err != nil {
		return nil, err
	}
	profile := rec.Profile
	profile.SecretWord = rec.SecretWordHash
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	return nil
}

func (r *profileRepository) AddFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	profile, err := r.GetByUserID(ctx, targetUserID)
	if err != nil {
		return err
	}

	// INSERT ... ON CONFLICT DO NOTHING keeps repeat follows idempotent.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO profile_followers (profile_id, user_id)
		 VALUES (?, ?)
		 ON CONFLICT DO NOTHING`,
		profile.ID, followerUserID,
	)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidateProfile(ctx, targetUserID)
	return nil
}

func (r *profileRepository) RemoveFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	profile, err := r.GetByUserID(ctx, targetUserID)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM profile_followers WHERE profile_id = ? AND user_id = ?`,
		profile.ID, followerUserID,
	)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidateProfile(ctx, targetUserID)
	return nil
}

func (r *profileRepository) FollowersCount(ctx context.Context, userID uint) (int64, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Table("profile_followers").
		Where("profile_id = ?", profile.ID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
