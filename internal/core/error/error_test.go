package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUpstream(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), KindTimeout, http.StatusGatewayTimeout},
		{"quota", errors.New("gemini: Error 429, Message: quota, Status: RESOURCE_EXHAUSTED"), KindRateLimited, http.StatusTooManyRequests},
		{"generic", errors.New("connection reset"), KindUpstream, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapUpstream(tt.err)
			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.status, appErr.Status)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.NoError(t, WrapUpstream(nil))
}

func TestWrapUpstreamKeepsAppError(t *testing.T) {
	orig := New(KindTimeout, context.DeadlineExceeded, http.StatusGatewayTimeout, TimeoutErrorMessage)
	assert.Same(t, orig, WrapUpstream(fmt.Errorf("outer: %w", orig)))
}

func TestWrapRedis(t *testing.T) {
	err := WrapRedis(redis.Nil)
	assert.Equal(t, http.StatusNotFound, From(err).Status)
	assert.ErrorIs(t, err, redis.Nil)

	err = WrapRedis(errors.New("dial tcp: refused"))
	assert.Equal(t, KindRedis, KindOf(err))
	assert.Equal(t, http.StatusBadGateway, From(err).Status)
}

func TestFromForeignError(t *testing.T) {
	appErr := From(errors.New("boom"))
	assert.Equal(t, KindSystem, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, From(nil))
}

func TestEmptyMessageSentinel(t *testing.T) {
	err := fmt.Errorf("chat: %w", ErrEmptyMessage)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, KindValidation, KindOf(err))
}
