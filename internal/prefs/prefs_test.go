package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewStore(client, "session123"), mr
}

func TestDarkMode_DefaultsToLight(t *testing.T) {
	store, _ := setupStore(t)

	dark, err := store.DarkMode(context.Background())
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestDarkMode_RoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDarkMode(ctx, true))

	dark, err := store.DarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, dark)
}

func TestDarkMode_UsesOwnKey(t *testing.T) {
	store, mr := setupStore(t)

	require.NoError(t, store.SetDarkMode(context.Background(), true))
	assert.True(t, mr.Exists("prefs:session123"))
	assert.False(t, mr.Exists("cart:session123"), "preference and cart keys are separate")
}

func TestDarkMode_CorruptPayload(t *testing.T) {
	store, mr := setupStore(t)

	require.NoError(t, mr.Set("prefs:session123", "{not json"))

	_, err := store.DarkMode(context.Background())
	require.ErrorContains(t, err, "unmarshal preferences failed")
}
