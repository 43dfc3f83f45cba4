package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

// stateClaims is the token payload. Field names are short to keep tokens compact.
type stateClaims struct {
	Tone         model.Tone      `json:"tn,omitempty"`
	Stage        model.Stage     `json:"st"`
	MessageCount int             `json:"mc"`
	LimitReached bool            `json:"lr,omitempty"`
	History      []exchangeClaim `json:"hs,omitempty"`
	jwt.RegisteredClaims
}

type exchangeClaim struct {
	User string `json:"u"`
	AI   string `json:"a"`
}

func (c *stateClaims) validate() error {
	if !c.Tone.Valid() {
		return fmt.Errorf("unknown tone %q", c.Tone)
	}
	if !c.Stage.Valid() {
		return fmt.Errorf("unknown stage %q", c.Stage)
	}
	if c.MessageCount < 0 {
		return errors.New("negative message count")
	}
	return nil
}

func (c *stateClaims) state() model.ConversationState {
	s := model.ConversationState{
		Tone:         c.Tone,
		Stage:        c.Stage,
		MessageCount: c.MessageCount,
		LimitReached: c.LimitReached,
	}
	if len(c.History) > 0 {
		s.History = make([]model.Exchange, len(c.History))
		for i, ex := range c.History {
			s.History[i] = model.Exchange{User: ex.User, AI: ex.AI}
		}
	}
	return s
}
