package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bridgetext/coach-server/internal/agent/model"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

// StoreBoundary keeps state server-side, keyed by an opaque session key.
// Each key is serialized for the whole turn; different keys never contend.
type StoreBoundary struct {
	repo   model.StateRepository
	limits model.Limits
	locks  *keyLocker
}

func NewStoreBoundary(repo model.StateRepository, limits model.Limits) *StoreBoundary {
	return &StoreBoundary{
		repo:   repo,
		limits: limits.WithDefaults(),
		locks:  newKeyLocker(),
	}
}

func (b *StoreBoundary) Mode() string { return model.SessionModeStore }

func (b *StoreBoundary) Open(ctx context.Context, ref string) (*Lease, error) {
	key, known := parseKey(ref)
	unlock := b.locks.Lock(key)

	lease := &Lease{key: key, release: unlock, Fresh: true, State: model.NewConversationState()}
	if !known {
		return lease, nil
	}

	stored, err := b.repo.Load(ctx, key)
	if err != nil {
		lease.Release()
		return nil, fmt.Errorf("load session state: %w", err)
	}
	if stored != nil {
		lease.State = stored.Normalize(b.limits)
		lease.Fresh = false
	}
	return lease, nil
}

func (b *StoreBoundary) Save(ctx context.Context, lease *Lease, state model.ConversationState) (string, error) {
	if err := b.repo.Save(ctx, lease.key, state.Normalize(b.limits)); err != nil {
		return "", fmt.Errorf("save session state: %w", err)
	}
	return lease.key, nil
}

// Reset drops the old entry and issues a new key holding the empty state,
// so a replayed old key can no longer reach the cleared conversation.
func (b *StoreBoundary) Reset(ctx context.Context, lease *Lease) (string, error) {
	if err := b.repo.Delete(ctx, lease.key); err != nil {
		return "", fmt.Errorf("delete session state: %w", err)
	}
	key := uuid.NewString()
	if err := b.repo.Save(ctx, key, model.NewConversationState()); err != nil {
		return "", fmt.Errorf("save session state: %w", err)
	}
	return key, nil
}

func (b *StoreBoundary) Peek(ctx context.Context, ref string) model.ConversationState {
	key, known := parseKey(ref)
	if !known {
		return model.NewConversationState()
	}
	stored, err := b.repo.Load(ctx, key)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to read session state")
		return model.NewConversationState()
	}
	if stored == nil {
		return model.NewConversationState()
	}
	return stored.Normalize(b.limits)
}

// parseKey accepts only well-formed UUIDs; anything else gets a new key.
func parseKey(ref string) (string, bool) {
	if ref != "" {
		if id, err := uuid.Parse(ref); err == nil {
			return id.String(), true
		}
	}
	return uuid.NewString(), false
}

var _ Boundary = (*StoreBoundary)(nil)
