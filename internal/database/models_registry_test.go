package database

import (
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAllModels_ContainsEveryEntity(t *testing.T) {
	all := AllModels()
	assert.Len(t, all, 4)

	assert.IsType(t, &models.User{}, all[0])
	assert.IsType(t, &models.Profile{}, all[1])
	assert.IsType(t, &models.Tag{}, all[2])
	assert.IsType(t, &models.Post{}, all[3])
}
