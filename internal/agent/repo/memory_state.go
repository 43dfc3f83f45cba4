package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

// MemoryStateRepository keeps state in process memory. Entries expire after
// ttl of inactivity; suitable for a single instance or local development.
type MemoryStateRepository struct {
	cache *cache.Cache
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &MemoryStateRepository{cache: cache.New(ttl, cleanup)}
}

func (r *MemoryStateRepository) Load(ctx context.Context, key string) (*model.ConversationState, error) {
	x, found := r.cache.Get(key)
	if !found {
		return nil, nil
	}
	// Stored by value so callers never share history slices.
	state := x.(model.ConversationState)
	state.History = model.TrimHistory(state.History, len(state.History))
	return &state, nil
}

func (r *MemoryStateRepository) Save(ctx context.Context, key string, state model.ConversationState) error {
	state.History = model.TrimHistory(state.History, len(state.History))
	r.cache.Set(key, state, cache.DefaultExpiration)
	return nil
}

func (r *MemoryStateRepository) Delete(ctx context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}

var _ model.StateRepository = (*MemoryStateRepository)(nil)
