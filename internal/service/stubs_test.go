package service

import (
	"context"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
)

type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn  func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	createWithProfileFn func(context.Context, *models.User, *models.Profile) error
	updateFn            func(context.Context, *models.User) error
	deleteFn            func(context.Context, uint) error
	listFn              func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	return s.createWithProfileFn(ctx, user, profile)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

// noopUserRepo returns a stub whose every method reports "not stubbed" via
// panic, so tests only wire what they use.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:           func(context.Context, uint) (*models.User, error) { panic("getByID not stubbed") },
		getByIDWithPostsFn:  func(context.Context, uint) (*models.User, error) { panic("getByIDWithPosts not stubbed") },
		getByEmailFn:        func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:     func(context.Context, string) (*models.User, error) { return nil, nil },
		createWithProfileFn: func(context.Context, *models.User, *models.Profile) error { panic("createWithProfile not stubbed") },
		updateFn:            func(context.Context, *models.User) error { panic("update not stubbed") },
		deleteFn:            func(context.Context, uint) error { panic("delete not stubbed") },
		listFn:              func(context.Context, int, int) ([]models.User, error) { panic("list not stubbed") },
	}
}

type profileRepoStub struct {
	getByUserIDFn    func(context.Context, uint) (*models.Profile, error)
	updateFn         func(context.Context, *models.Profile) error
	addFollowerFn    func(context.Context, uint, uint) error
	removeFollowerFn func(context.Context, uint, uint) error
	followersCountFn func(context.Context, uint) (int64, error)
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}
func (s *profileRepoStub) AddFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	return s.addFollowerFn(ctx, targetUserID, followerUserID)
}
func (s *profileRepoStub) RemoveFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	return s.removeFollowerFn(ctx, targetUserID, followerUserID)
}
func (s *profileRepoStub) FollowersCount(ctx context.Context, userID uint) (int64, error) {
	return s.followersCountFn(ctx, userID)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByUserIDFn:    func(context.Context, uint) (*models.Profile, error) { panic("getByUserID not stubbed") },
		updateFn:         func(context.Context, *models.Profile) error { panic("update not stubbed") },
		addFollowerFn:    func(context.Context, uint, uint) error { panic("addFollower not stubbed") },
		removeFollowerFn: func(context.Context, uint, uint) error { panic("removeFollower not stubbed") },
		followersCountFn: func(context.Context, uint) (int64, error) { panic("followersCount not stubbed") },
	}
}

type postRepoStub struct {
	createFn      func(context.Context, *models.Post, []models.Tag) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getByUserIDFn func(context.Context, uint) ([]*models.Post, error)
	listFn        func(context.Context, int, int) ([]*models.Post, error)
	filterFn      func(context.Context, repository.PostFilter) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post, []models.Tag, bool) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return s.createFn(ctx, post, tags)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Filter(ctx context.Context, f repository.PostFilter) ([]*models.Post, error) {
	return s.filterFn(ctx, f)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post, tags []models.Tag, replaceTags bool) error {
	return s.updateFn(ctx, post, tags, replaceTags)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(context.Context, *models.Post, []models.Tag) error { panic("create not stubbed") },
		getByIDFn:     func(context.Context, uint) (*models.Post, error) { panic("getByID not stubbed") },
		getByUserIDFn: func(context.Context, uint) ([]*models.Post, error) { panic("getByUserID not stubbed") },
		listFn:        func(context.Context, int, int) ([]*models.Post, error) { panic("list not stubbed") },
		filterFn: func(context.Context, repository.PostFilter) ([]*models.Post, error) {
			panic("filter not stubbed")
		},
		updateFn: func(context.Context, *models.Post, []models.Tag, bool) error { panic("update not stubbed") },
		deleteFn: func(context.Context, uint) error { panic("delete not stubbed") },
	}
}

type tagRepoStub struct {
	findOrCreateByNamesFn func(context.Context, []string) ([]models.Tag, error)
	listFn                func(context.Context) ([]models.Tag, error)
}

func (s *tagRepoStub) FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	return s.findOrCreateByNamesFn(ctx, names)
}
func (s *tagRepoStub) List(ctx context.Context) ([]models.Tag, error) {
	return s.listFn(ctx)
}

// echoTagRepo resolves each name to a tag whose ID is its position, which is
// enough for services that only thread tags through.
func echoTagRepo() *tagRepoStub {
	return &tagRepoStub{
		findOrCreateByNamesFn: func(_ context.Context, names []string) ([]models.Tag, error) {
			tags := make([]models.Tag, len(names))
			for i, name := range names {
				tags[i] = models.Tag{ID: uint(i + 1), Name: name}
			}
			return tags, nil
		},
		listFn: func(context.Context) ([]models.Tag, error) { return nil, nil },
	}
}
