package session

import (
	"context"
	"sync"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

// Boundary resolves the prior state of a request and issues the artifact
// (token or session key) the client must replay next time.
type Boundary interface {
	// Open resolves ref into a lease holding the prior state. Invalid or
	// missing refs yield a fresh state, never an error; errors are reserved
	// for backend failures. The lease must be released when the turn ends.
	Open(ctx context.Context, ref string) (*Lease, error)

	// Save persists state for the lease and returns the ref to hand back.
	Save(ctx context.Context, lease *Lease, state model.ConversationState) (string, error)

	// Reset discards the lease's state and returns a ref for the empty state.
	Reset(ctx context.Context, lease *Lease) (string, error)

	// Peek reads the state behind ref without taking a lease.
	Peek(ctx context.Context, ref string) model.ConversationState

	// Mode names the boundary for logs and health output.
	Mode() string
}

// Lease is the request-scoped ownership of one conversation's state.
type Lease struct {
	// State is the authoritative prior state for this request.
	State model.ConversationState
	// Fresh is true when no valid prior state was found.
	Fresh bool

	key     string
	release func()
	once    sync.Once
}

// Release ends the lease. Safe to call more than once.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.release != nil {
			l.release()
		}
	})
}
