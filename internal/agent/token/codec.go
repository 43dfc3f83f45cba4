package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

const (
	// Issuer is stamped into every token and required on decode.
	Issuer = "coach-server"
	// MinSecretLength is the minimum HMAC key size accepted by NewCodec.
	MinSecretLength = 32
)

// ErrWeakSecret is returned by NewCodec for secrets shorter than MinSecretLength.
var ErrWeakSecret = fmt.Errorf("session token secret must be at least %d bytes", MinSecretLength)

// Codec turns conversation state into HS256-signed tokens and back.
type Codec struct {
	secret []byte
	ttl    time.Duration
	limits model.Limits
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL sets the token lifetime. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) { c.ttl = ttl }
}

// WithLimits sets the limits re-enforced on decoded state.
func WithLimits(l model.Limits) Option {
	return func(c *Codec) { c.limits = l.WithDefaults() }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a codec around a process-held secret.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    24 * time.Hour,
		limits: model.Limits{}.WithDefaults(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(c.now),
	}
	if c.ttl > 0 {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
	}
	c.parser = jwt.NewParser(parserOpts...)
	return c, nil
}

// Encode signs state into a token. The history is capped before encoding so
// token size stays bounded.
func (c *Codec) Encode(state model.ConversationState) (string, error) {
	state = state.Normalize(c.limits)

	now := c.now()
	cl := stateClaims{
		Tone:         state.Tone,
		Stage:        state.Stage,
		MessageCount: state.MessageCount,
		LimitReached: state.LimitReached,
		History:      make([]exchangeClaim, 0, len(state.History)),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		cl.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	for _, ex := range state.History {
		cl.History = append(cl.History, exchangeClaim{User: ex.User, AI: ex.AI})
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns the state it carries. No claim is used
// before the signature has been verified.
func (c *Codec) Decode(token string) (model.ConversationState, error) {
	if token == "" {
		return model.ConversationState{}, &DecodeError{Failure: Malformed, Err: errors.New("empty token")}
	}

	var cl stateClaims
	_, err := c.parser.ParseWithClaims(token, &cl, c.keyFunc)
	if err != nil {
		return model.ConversationState{}, classify(err)
	}

	if err := cl.validate(); err != nil {
		return model.ConversationState{}, &DecodeError{Failure: Malformed, Err: err}
	}
	return cl.state().Normalize(c.limits), nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}

func classify(err error) *DecodeError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &DecodeError{Failure: Expired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &DecodeError{Failure: IntegrityFailed, Err: err}
	default:
		return &DecodeError{Failure: Malformed, Err: err}
	}
}
