// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"time"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts}
}

// BuildUser constructs a user with an attached profile but does not
// persist it. Useful for batching and dry runs.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	user := &models.User{
		Username:  username,
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = seedPassword
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser persists a sample user together with its profile. The profile
// carries the shared seed secret word and a deterministic avatar URL.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)

	secret := seedSecretWord
	if !f.opts.SkipBcrypt {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(seedSecretWord), bcrypt.DefaultCost)
		secret = string(hashed)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.Profile{
			UserID:     user.ID,
			Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", user.Username),
			SecretWord: secret,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given user with a realistic
// created_at spread but does not persist it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:   gofakeit.Sentence(5),
		Content: gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:  user.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := gofakeit.Number(0, maxDays-1)
	hoursBack := gofakeit.Number(0, 23)
	minsBack := gofakeit.Number(0, 59)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a sample post for the given user, attached to the
// provided tags.
func (f *Factory) CreatePost(user *models.User, tags []models.Tag, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	post.Tags = tags

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateFollow records follower as a follower of target's profile.
func (f *Factory) CreateFollow(target, follower *models.User) error {
	var profile models.Profile
	if err := f.db.Where("user_id = ?", target.ID).First(&profile).Error; err != nil {
		return err
	}
	return f.db.Model(&profile).Association("Followers").Append(follower)
}

// FindOrCreateTag resolves a tag by name, creating it when absent.
func (f *Factory) FindOrCreateTag(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := f.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateUsersBatch persists multiple users one by one, logging progress.
// Uniqueness collisions from gofakeit usernames are skipped, not fatal.
func (f *Factory) CreateUsersBatch(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}
