package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bridgetext/coach-server/internal/agent/flow"
	"github.com/bridgetext/coach-server/internal/agent/graph/safety"
	"github.com/bridgetext/coach-server/internal/agent/model"
	"github.com/bridgetext/coach-server/internal/agent/session"
	errx "github.com/bridgetext/coach-server/internal/core/error"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

const DefaultGenerationTimeout = 30 * time.Second

// Generator produces the coach's reply for a turn.
type Generator interface {
	Generate(ctx context.Context, in model.GenerationInput) (string, error)
}

type Config struct {
	Machine           *flow.Machine
	Boundary          session.Boundary
	Generator         Generator
	GenerationTimeout time.Duration
}

// Service runs chat turns: resolve state, step the flow, generate when asked,
// and hand back the artifact for the next request.
type Service struct {
	machine  *flow.Machine
	boundary session.Boundary
	gen      Generator
	timeout  time.Duration
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Machine == nil {
		return nil, fmt.Errorf("state machine is nil")
	}
	if cfg.Boundary == nil {
		return nil, fmt.Errorf("session boundary is nil")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	return &Service{
		machine:  cfg.Machine,
		boundary: cfg.Boundary,
		gen:      cfg.Generator,
		timeout:  cfg.GenerationTimeout,
	}, nil
}

// Chat runs one turn. The response is always populated, also when an error
// is returned, so the transport can send the token back with the failure.
func (s *Service) Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	ref := deref(req.Token)

	text := strings.TrimSpace(req.Message)
	if text == "" {
		return s.rejectEmpty(ctx, ref), errx.ErrEmptyMessage
	}

	lease, err := s.boundary.Open(ctx, ref)
	if err != nil {
		appErr := errx.From(err)
		return failure(ref, nil, false, appErr), appErr
	}
	defer lease.Release()

	prior := lease.State
	next, directive := s.machine.Step(prior, flow.Input{Text: text})

	reply := directive.Reply
	quickReplies := directive.QuickReplies
	if directive.Generates() {
		answer, err := s.generate(ctx, text, directive, next)
		if err != nil {
			appErr := errx.From(errx.WrapUpstream(err))
			logx.Warn().
				Err(err).
				Str("kind", string(appErr.Kind)).
				Str("stage", string(prior.Stage)).
				Msg("generation failed, keeping prior state")

			// The turn is not recorded: the user can retry without losing a message.
			token, saveErr := s.boundary.Save(ctx, lease, prior)
			if saveErr != nil {
				logx.Error().Err(saveErr).Msg("failed to persist state after generation failure")
				token = ref
			}
			return failure(token, s.machine.QuickReplies(prior), prior.LimitReached, appErr), appErr
		}

		var reachedNow bool
		next, reachedNow = s.machine.Record(next, model.Exchange{User: text, AI: answer})
		reply = answer
		if reachedNow {
			reply = answer + "\n\n" + s.machine.LimitNotice()
			quickReplies = []string{}
		}
	} else if category := safety.Screen(text); category != safety.None {
		// Canned flow replies never hide a safety warning. Stage and quick
		// replies stay as the machine decided.
		logx.Info().
			Str("category", string(category)).
			Str("stage", string(prior.Stage)).
			Msg("message flagged by safety screen")
		reply = safety.Reply(category)
	}

	token, err := s.boundary.Save(ctx, lease, next)
	if err != nil {
		appErr := errx.From(err)
		logx.Error().Err(err).Msg("failed to persist conversation state")
		return failure(ref, s.machine.QuickReplies(prior), prior.LimitReached, appErr), appErr
	}

	logx.Info().
		Str("mode", s.boundary.Mode()).
		Str("action", string(directive.Action)).
		Str("stage", string(next.Stage)).
		Int("message_count", next.MessageCount).
		Bool("limit_reached", next.LimitReached).
		Msg("chat turn")

	if quickReplies == nil {
		quickReplies = []string{}
	}
	return model.ChatResponse{
		Success:      true,
		Response:     &reply,
		QuickReplies: quickReplies,
		LimitReached: next.LimitReached,
		Token:        token,
	}, nil
}

func (s *Service) generate(ctx context.Context, text string, d model.Directive, state model.ConversationState) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.gen.Generate(genCtx, model.GenerationInput{
		Message: text,
		Tone:    d.Tone,
		Topic:   d.Topic,
		History: state.RecentHistory(s.machine.Limits().PromptTurns),
	})
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return "", errors.Join(context.DeadlineExceeded, err)
		}
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("generator returned an empty reply")
	}
	return answer, nil
}

// History projects the exchanges behind token; invalid tokens give an empty list.
func (s *Service) History(ctx context.Context, token string) model.HistoryResponse {
	state := s.boundary.Peek(ctx, token)
	history := state.History
	if history == nil {
		history = []model.Exchange{}
	}
	return model.HistoryResponse{History: history}
}

// Clear discards the conversation and returns the artifact of the fresh state.
func (s *Service) Clear(ctx context.Context, token string) (model.ClearResponse, error) {
	lease, err := s.boundary.Open(ctx, token)
	if err != nil {
		return model.ClearResponse{}, errx.From(err)
	}
	defer lease.Release()

	_, directive := s.machine.Step(lease.State, flow.Input{Clear: true})

	fresh, err := s.boundary.Reset(ctx, lease)
	if err != nil {
		logx.Error().Err(err).Msg("failed to reset conversation state")
		return model.ClearResponse{}, errx.From(err)
	}

	logx.Info().Str("mode", s.boundary.Mode()).Msg("conversation cleared")
	return model.ClearResponse{Success: true, Token: fresh, Message: directive.Reply}, nil
}

// rejectEmpty answers an empty message. A presented ref is echoed untouched;
// without one a fresh state is issued so the client always gets a token.
func (s *Service) rejectEmpty(ctx context.Context, ref string) model.ChatResponse {
	if ref != "" {
		return failure(ref, nil, false, errx.ErrEmptyMessage)
	}

	lease, err := s.boundary.Open(ctx, "")
	if err != nil {
		logx.Error().Err(err).Msg("failed to open fresh session for empty message")
		return failure(ref, nil, false, errx.ErrEmptyMessage)
	}
	defer lease.Release()

	token, err := s.boundary.Save(ctx, lease, lease.State)
	if err != nil {
		logx.Error().Err(err).Msg("failed to issue fresh session for empty message")
		return failure(ref, nil, false, errx.ErrEmptyMessage)
	}
	return failure(token, s.machine.QuickReplies(lease.State), false, errx.ErrEmptyMessage)
}

func failure(token string, quickReplies []string, limitReached bool, appErr *errx.AppError) model.ChatResponse {
	msg := appErr.Message
	if quickReplies == nil {
		quickReplies = []string{}
	}
	return model.ChatResponse{
		Success:      false,
		QuickReplies: quickReplies,
		LimitReached: limitReached,
		Token:        token,
		Error:        &msg,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
