package repository

import (
	"fmt"
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/database"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory SQLite database with the full
// schema migrated. The DSN is keyed by test name so parallel tests never
// share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared-cache memory DB alive for the
	// whole test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.Profile{
		UserID:     user.ID,
		Avatar:     "media/avatars/default_avatar.jpg",
		SecretWord: "not-a-real-hash",
	}
	require.NoError(t, db.Create(profile).Error)
	user.Profile = profile
	return user
}
