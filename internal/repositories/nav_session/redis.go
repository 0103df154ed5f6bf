package navsession

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	apperrors "github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/pkg/clock"
	"github.com/KirkDiggler/bestiary/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/bestiary/internal/redis"
)

// Key pattern: nav_session:{id}
const sessionKeyPrefix = "nav_session:"

// compareAndSet writes ARGV[2] with a PX of ARGV[3] only while the key still
// holds ARGV[1]. A deleted or expired key is never recreated.
var compareAndSet = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	return -1
end
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

const (
	casMissing = -1
	casChanged = 0
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client      redisclient.Client
	Clock       clock.Clock     // optional, defaults to real time
	IDGenerator idgen.Generator // optional, defaults to prefixed UUIDs
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c == nil {
		return apperrors.InvalidArgument("config cannot be nil")
	}
	if c.Client == nil {
		return apperrors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.IDGenerator == nil {
		c.IDGenerator = idgen.NewUUID(sessionIDPrefix)
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	idGen  idgen.Generator
}

// NewRedis creates a Redis-backed session repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		idGen:  cfg.IDGenerator,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument(errInputNil)
	}
	if input.TTL < 0 {
		return nil, apperrors.InvalidArgument(errNegativeTTL)
	}

	ttl := ttlOrDefault(input.TTL)
	now := r.clock.Now()
	session := &NavSession{
		ID:        r.idGen.Generate(),
		Cursor:    input.Cursor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	// SETNX guards against a generator handing out a live ID twice
	if err := r.create(ctx, session, ttl); err != nil {
		return nil, err
	}

	return &CreateOutput{Session: session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, apperrors.InvalidArgument(errIDEmpty)
	}

	session, _, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Session: session}, nil
}

func (r *redisRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, apperrors.InvalidArgument(errIDEmpty)
	}
	if input.TTL < 0 {
		return nil, apperrors.InvalidArgument(errNegativeTTL)
	}

	session, current, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if session.Version != input.Version {
		return nil, apperrors.Abortedf(errStale, input.ID, input.Version).WithMeta("session_id", input.ID)
	}

	ttl := ttlOrDefault(input.TTL)
	session.Cursor = input.Cursor
	session.ExpiresAt = r.clock.Now().Add(ttl)
	session.Version++

	data, err := json.Marshal(session)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal session")
	}

	result, err := compareAndSet.Run(ctx, r.client, []string{buildKey(input.ID)}, current, data, ttl.Milliseconds()).Int64()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to store session in Redis")
	}
	switch result {
	case casMissing:
		return nil, apperrors.NotFound(errNotFound).WithMeta("session_id", input.ID)
	case casChanged:
		return nil, apperrors.Abortedf(errStale, input.ID, input.Version).WithMeta("session_id", input.ID)
	}

	return &UpdateOutput{Session: session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, apperrors.InvalidArgument(errIDEmpty)
	}

	if err := r.client.Del(ctx, buildKey(input.ID)).Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{}, nil
}

// load returns the decoded session along with the raw stored value
func (r *redisRepository) load(ctx context.Context, id string) (*NavSession, []byte, error) {
	key := buildKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, apperrors.NotFound(errNotFound).WithMeta("session_id", id)
		}
		return nil, nil, apperrors.Wrap(err, "failed to get session from Redis")
	}

	var session NavSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to unmarshal session")
	}

	// Redis expiry and our clock can disagree by a tick
	if r.clock.Now().After(session.ExpiresAt) {
		_ = r.client.Del(ctx, key)
		return nil, nil, apperrors.NotFound(errNotFound).WithMeta("session_id", id)
	}

	return &session, data, nil
}

func (r *redisRepository) create(ctx context.Context, session *NavSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session")
	}

	ok, err := r.client.SetNX(ctx, buildKey(session.ID), data, ttl).Result()
	if err != nil {
		return apperrors.Wrap(err, "failed to store session in Redis")
	}
	if !ok {
		return apperrors.Internalf("session %s already exists", session.ID)
	}
	return nil
}

func buildKey(id string) string {
	return sessionKeyPrefix + id
}
