package database

import (
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
)

// AllModels returns every entity subject to schema migration, in dependency
// order (users before the tables that reference them).
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Profile{},
		&models.Tag{},
		&models.Post{},
	}
}
