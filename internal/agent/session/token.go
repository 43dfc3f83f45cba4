package session

import (
	"context"
	"errors"

	"github.com/bridgetext/coach-server/internal/agent/model"
	"github.com/bridgetext/coach-server/internal/agent/token"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

// TokenBoundary keeps no server-side state: the conversation travels in a
// signed token that the client replays on every request.
type TokenBoundary struct {
	codec *token.Codec
}

func NewTokenBoundary(codec *token.Codec) *TokenBoundary {
	return &TokenBoundary{codec: codec}
}

func (b *TokenBoundary) Mode() string { return model.SessionModeToken }

func (b *TokenBoundary) Open(ctx context.Context, ref string) (*Lease, error) {
	state, fresh := b.resolve(ref)
	return &Lease{State: state, Fresh: fresh}, nil
}

func (b *TokenBoundary) Save(ctx context.Context, lease *Lease, state model.ConversationState) (string, error) {
	return b.codec.Encode(state)
}

func (b *TokenBoundary) Reset(ctx context.Context, lease *Lease) (string, error) {
	return b.codec.Encode(model.NewConversationState())
}

func (b *TokenBoundary) Peek(ctx context.Context, ref string) model.ConversationState {
	state, _ := b.resolve(ref)
	return state
}

func (b *TokenBoundary) resolve(ref string) (model.ConversationState, bool) {
	if ref == "" {
		return model.NewConversationState(), true
	}
	state, err := b.codec.Decode(ref)
	if err != nil {
		var de *token.DecodeError
		if errors.As(err, &de) {
			// The category is enough to debug; the token itself may carry user text.
			logx.Info().Str("failure", de.Failure.String()).Msg("discarding session token")
		}
		return model.NewConversationState(), true
	}
	return state, false
}

var _ Boundary = (*TokenBoundary)(nil)
