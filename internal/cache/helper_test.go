package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestSetAndGetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	in := cachedUser{ID: 7, Username: "helper"}
	require.NoError(t, SetJSON(ctx, UserKey(7), in, UserTTL))

	var out cachedUser
	found, err := GetJSON(ctx, UserKey(7), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSON_Miss(t *testing.T) {
	setupMiniredis(t)

	var out cachedUser
	found, err := GetJSON(context.Background(), UserKey(99), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_PopulatesOnMissAndServesFromCache(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 1, Username: "fetched"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(1), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fetched", first.Username)

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(1), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read must come from cache")
	assert.Equal(t, "fetched", second.Username)
}

func TestInvalidateUser_DropsProfileToo(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), cachedUser{ID: 3}, UserTTL))
	require.NoError(t, SetJSON(ctx, ProfileKey(3), cachedUser{ID: 3}, ProfileTTL))

	InvalidateUser(ctx, 3)

	var out cachedUser
	found, err := GetJSON(ctx, UserKey(3), &out)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetJSON(ctx, ProfileKey(3), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpersNilClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	found, err := GetJSON(ctx, "any", &cachedUser{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "any", cachedUser{}, time.Minute))

	var dest cachedUser
	err = Aside(ctx, "any", &dest, time.Minute, func() error {
		dest.Username = "direct"
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "direct", dest.Username)
}
