package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores credentials in plain text for fast dev seeding.
	SkipBcrypt bool
	// MaxDays caps how far back post timestamps spread (default 90).
	MaxDays int
}

const (
	seedPassword   = "password123"
	seedSecretWord = "bluebird"
)

// tagNames is the pool of tags seeded posts draw from. AND-filtering in the
// feed only gets interesting when tags repeat across posts, so the pool is
// deliberately small.
var tagNames = []string{
	"sleep", "toddlers", "newborns", "nutrition", "school",
	"health", "activities", "discipline", "travel", "teens",
	"reading", "outdoors", "crafts", "recipes", "milestones",
}

// Seeder populates the database with test data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Run populates the database end to end: users with profiles, the tag
// pool, tagged posts and a sparse follower graph.
func (s *Seeder) Run() error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...",
		s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.createUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	tags, err := s.ensureTags()
	if err != nil {
		return fmt.Errorf("failed to create tags: %w", err)
	}
	log.Printf("✓ %d tags available", len(tags))

	posts, err := s.createPosts(users, tags, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := s.createFollowerGraph(users); err != nil {
		return fmt.Errorf("failed to create follower graph: %w", err)
	}
	log.Println("✓ follower graph created")

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE post_tags, posts, profile_followers, profiles, tags, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

func (s *Seeder) createUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include fixed accounts so a fresh environment has known logins.
	if count >= 2 {
		admin, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = "admin"
			u.Email = "admin@example.com"
			u.IsStaff = true
		})
		if err == nil {
			users = append(users, admin)
		}
		demo, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = "demo"
			u.Email = "demo@example.com"
		})
		if err == nil {
			users = append(users, demo)
		}
	}

	rest, err := s.factory.CreateUsersBatch(count - len(users))
	if err != nil {
		return nil, err
	}
	return append(users, rest...), nil
}

func (s *Seeder) ensureTags() ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag, err := s.factory.FindOrCreateTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *Seeder) createPosts(users []*models.User, tags []models.Tag, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[r.Intn(len(users))]
		postTags := pickTags(r, tags, 1+r.Intn(3))

		post, err := s.factory.CreatePost(user, postTags)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return posts, nil
}

// createFollowerGraph makes each user follow a handful of others.
func (s *Seeder) createFollowerGraph(users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, follower := range users {
		follows := 1 + r.Intn(3)
		for j := 0; j < follows; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(target, follower); err != nil {
				return err
			}
		}
	}
	return nil
}

// pickTags selects n distinct tags from the pool.
func pickTags(r *rand.Rand, tags []models.Tag, n int) []models.Tag {
	if n > len(tags) {
		n = len(tags)
	}
	idx := r.Perm(len(tags))[:n]
	picked := make([]models.Tag, 0, n)
	for _, i := range idx {
		picked = append(picked, tags[i])
	}
	return picked
}
