package navsession_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/navigation"
	"github.com/KirkDiggler/bestiary/internal/pkg/clock"
	"github.com/KirkDiggler/bestiary/internal/pkg/idgen"
	navsession "github.com/KirkDiggler/bestiary/internal/repositories/nav_session"
	"github.com/KirkDiggler/bestiary/internal/testutils"
)

func TestNewRedis_Validation(t *testing.T) {
	_, err := navsession.NewRedis(nil)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = navsession.NewRedis(&navsession.RedisConfig{})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRedisRepository_StorageLayout(t *testing.T) {
	ctx := context.Background()
	client, mr := testutils.CreateTestRedisClient(t)
	clk := clock.NewFixed(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	repo, err := navsession.NewRedis(&navsession.RedisConfig{
		Client:      client,
		Clock:       clk,
		IDGenerator: idgen.NewSequential("nav"),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &navsession.CreateInput{Cursor: navigation.Positioned(2), TTL: 10 * time.Minute})
	require.NoError(t, err)

	assert.True(t, mr.Exists("nav_session:nav_1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("nav_session:nav_1"))

	raw, err := mr.Get("nav_session:nav_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "nav_1",
		"cursor": {"position": 2, "set": true},
		"created_at": "2025-07-01T12:00:00Z",
		"expires_at": "2025-07-01T12:10:00Z",
		"version": 0
	}`, raw)

	clk.Advance(time.Minute)
	_, err = repo.Update(ctx, &navsession.UpdateInput{ID: "nav_1", Cursor: navigation.Positioned(3), TTL: 5 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, mr.TTL("nav_session:nav_1"))
	raw, err = mr.Get("nav_session:nav_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "nav_1",
		"cursor": {"position": 3, "set": true},
		"created_at": "2025-07-01T12:00:00Z",
		"expires_at": "2025-07-01T12:06:00Z",
		"version": 1
	}`, raw)
}

func TestRedisRepository_UpdateLosesToConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo, err := navsession.NewRedis(&navsession.RedisConfig{
		Client:      client,
		IDGenerator: idgen.NewSequential("nav"),
	})
	require.NoError(t, err)

	created, err := repo.Create(ctx, &navsession.CreateInput{})
	require.NoError(t, err)

	raw, err := mr.Get("nav_session:nav_1")
	require.NoError(t, err)
	other := strings.Replace(raw, `"version":0`, `"version":1`, 1)
	require.NotEqual(t, raw, other)

	// Another writer lands between our read and our write
	client.AddHook(&writeAfterGet{mr: mr, key: "nav_session:nav_1", value: other})

	_, err = repo.Update(ctx, &navsession.UpdateInput{ID: created.Session.ID, Cursor: navigation.Positioned(1)})
	assert.True(t, errors.IsAborted(err))

	after, err := mr.Get("nav_session:nav_1")
	require.NoError(t, err)
	assert.Equal(t, other, after)
}

// writeAfterGet overwrites key once, right after the first GET completes
type writeAfterGet struct {
	mr    *miniredis.Miniredis
	key   string
	value string
	done  bool
}

func (h *writeAfterGet) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *writeAfterGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == "get" && !h.done {
			h.done = true
			_ = h.mr.Set(h.key, h.value)
		}
		return err
	}
}

func (h *writeAfterGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisRepository_CorruptValue(t *testing.T) {
	ctx := context.Background()
	client, mr := testutils.CreateTestRedisClient(t)
	require.NoError(t, mr.Set("nav_session:nav_bad", "not json"))

	repo, err := navsession.NewRedis(&navsession.RedisConfig{Client: client})
	require.NoError(t, err)

	_, err = repo.Get(ctx, &navsession.GetInput{ID: "nav_bad"})
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
}

func TestRedisRepository_DuplicateID(t *testing.T) {
	ctx := context.Background()
	client, _ := testutils.CreateTestRedisClient(t)

	repo, err := navsession.NewRedis(&navsession.RedisConfig{
		Client:      client,
		IDGenerator: fixedID("nav_same"),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &navsession.CreateInput{})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &navsession.CreateInput{})
	assert.Error(t, err)
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }
