package routes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewRedisStore(rc, "test:", time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	res := Generate(texasDataset(), nil)
	m := Build(res.Routes, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, store.Save(ctx, m, Summarize(m)))

	assert.True(t, mr.Exists("test:manifest"))
	assert.True(t, mr.Exists("test:menu"))
	assert.Equal(t, time.Hour, mr.TTL("test:manifest"))

	got, menu, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.Routes, got.Routes)
	assert.Equal(t, m.Count(), got.Count())
	assert.True(t, m.Generated.Equal(got.Generated))
	assert.NotNil(t, menu)
}

func TestRedisStoreLoadEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	m, menu, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Nil(t, menu)
}

func TestRedisStoreLoadWithoutMenu(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	m := Build(Generate(texasDataset(), nil).Routes, time.Now())
	require.NoError(t, store.Save(ctx, m, Summarize(m)))
	mr.Del("test:menu")

	got, menu, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Nil(t, menu)
}

func TestRedisStoreMenuReadErrorKeepsManifest(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	m := Build(Generate(texasDataset(), nil).Routes, time.Now())
	require.NoError(t, store.Save(ctx, m, Summarize(m)))
	mr.Del("test:menu")
	mr.HSet("test:menu", "regions", "[]")

	got, menu, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.Routes, got.Routes)
	assert.Nil(t, menu)

	svc := NewService(nil, store)
	loaded, err := svc.Warm(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	built, err := svc.Menu()
	require.NoError(t, err)
	assert.NotNil(t, built)
}

func TestNewRedisStoreNilClient(t *testing.T) {
	assert.Nil(t, NewRedisStore(nil, "x", time.Minute))
}
