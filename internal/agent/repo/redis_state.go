package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bridgetext/coach-server/internal/agent/model"
	errx "github.com/bridgetext/coach-server/internal/core/error"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

type RedisStateRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateRepository(rdb redis.Cmdable, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisStateRepository) stateKey(key string) string {
	return fmt.Sprintf("coach:session:%s", key)
}

func (r *RedisStateRepository) Load(ctx context.Context, key string) (*model.ConversationState, error) {
	k := r.stateKey(key)

	raw, err := r.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", k).Msg("failed to load session state from redis")
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt entry is treated like a missing one; the next Save overwrites it.
		logx.Warn().Err(err).Str("key", k).Msg("discarding unreadable session state")
		return nil, nil
	}
	return &state, nil
}

func (r *RedisStateRepository) Save(ctx context.Context, key string, state model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	k := r.stateKey(key)

	// Set with TTL refreshes the expiry on every turn.
	if err := r.rdb.Set(ctx, k, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to save session state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStateRepository) Delete(ctx context.Context, key string) error {
	k := r.stateKey(key)
	if err := r.rdb.Del(ctx, k).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to delete session state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StateRepository = (*RedisStateRepository)(nil)
