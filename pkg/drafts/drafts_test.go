package drafts_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-offerform/pkg/drafts"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func exerciseStore(t *testing.T, s drafts.Store) {
	ctx := context.Background()

	_, found, err := s.Load(ctx, "coach@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, " coach@example.com ", []byte(`{"count":4}`)))
	data, found, err := s.Load(ctx, "coach@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"count":4}`, string(data))

	_, found, err = s.Load(ctx, "Coach@Example.com")
	require.NoError(t, err)
	assert.False(t, found, "draft keys match record identifiers exactly")

	require.NoError(t, s.Delete(ctx, "coach@example.com"))
	_, found, err = s.Load(ctx, "coach@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, s.Save(ctx, " ", nil), drafts.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, drafts.NewMemoryStore(0))
}

func TestRedisStore(t *testing.T) {
	client, _ := setupTestRedis(t)
	exerciseStore(t, drafts.NewRedisStore(client))
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := drafts.NewRedisStore(client, drafts.WithPrefix("test:"), drafts.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a@b.co", []byte("{}")))
	assert.True(t, mr.Exists("test:a@b.co"))
	assert.Equal(t, time.Hour, mr.TTL("test:a@b.co"))

	mr.FastForward(2 * time.Hour)
	_, found, err := s.Load(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()

	client, err := drafts.Dial(context.Background(), addr, "", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = drafts.Dial(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
