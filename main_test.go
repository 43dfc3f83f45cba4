package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgetext/coach-server/internal/agent/model"
	"github.com/bridgetext/coach-server/internal/agent/token"
)

func TestNewBoundary(t *testing.T) {
	limits := model.Limits{}.WithDefaults()

	tests := []struct {
		name     string
		session  model.SessionConfig
		wantMode string
		wantErr  error
		errText  string
	}{
		{
			name:     "token mode with secret",
			session:  model.SessionConfig{Mode: "token", TokenSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour},
			wantMode: model.SessionModeToken,
		},
		{
			name:    "token mode without secret",
			session: model.SessionConfig{Mode: "token"},
			errText: "SESSION_TOKEN_SECRET is required",
		},
		{
			name:    "token mode with weak secret",
			session: model.SessionConfig{Mode: "token", TokenSecret: "short"},
			wantErr: token.ErrWeakSecret,
		},
		{
			name:     "store mode needs no secret",
			session:  model.SessionConfig{Mode: "store", Store: "memory", StoreTTL: time.Hour},
			wantMode: model.SessionModeStore,
		},
		{
			name:    "unknown store",
			session: model.SessionConfig{Mode: "store", Store: "etcd"},
			errText: "unknown SESSION_STORE",
		},
		{
			name:    "unknown mode",
			session: model.SessionConfig{Mode: "cookie"},
			errText: "unknown SESSION_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, closeFn, err := newBoundary(context.Background(), AppConfig{Session: tt.session}, limits)
			require.NotNil(t, closeFn)
			defer closeFn()

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.ErrorContains(t, err, tt.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantMode, b.Mode())
			}
		})
	}
}
