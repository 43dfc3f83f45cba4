package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/bridgetext/coach-server/internal/agent/graph/prompts"
	"github.com/bridgetext/coach-server/internal/agent/graph/safety"
	"github.com/bridgetext/coach-server/internal/agent/model"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

const (
	NodeSafetyScreen = "safety_screen"
	NodeSafetyReply  = "safety_reply"
	NodeRetrieve     = "retrieve"
	NodeAssemble     = "assemble"
	NodeChatModel    = "chat_model"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// NewSafetyScreenPreHandler records the turn input in graph state.
func NewSafetyScreenPreHandler() func(context.Context, model.GenerationInput, *model.GenerationState) (model.GenerationInput, error) {
	return func(ctx context.Context, in model.GenerationInput, s *model.GenerationState) (model.GenerationInput, error) {
		s.Input = in
		s.SafetyCategory = ""
		s.RetrievalFailed = false
		s.ContextDocs = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewSafetyScreenNode flags messages the coach must not answer and passes
// the message on as the retrieval query.
func NewSafetyScreenNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.GenerationInput) (string, error) {
		category := safety.Screen(in.Message)
		if category != safety.None {
			err := compose.ProcessState(ctx, func(_ context.Context, s *model.GenerationState) error {
				s.SafetyCategory = string(category)
				return nil
			})
			if err != nil {
				return "", fmt.Errorf("failed to access state: %w", err)
			}
			logx.Info().Str("category", string(category)).Msg("message flagged by safety screen")
		}
		return in.Message, nil
	})
}

// NewSafetyCondition routes flagged messages to the canned reply.
func NewSafetyCondition() func(context.Context, string) (string, error) {
	return func(ctx context.Context, _ string) (string, error) {
		var flagged bool
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.GenerationState) error {
			flagged = s.SafetyCategory != ""
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}
		if flagged {
			return NodeSafetyReply, nil
		}
		return NodeRetrieve, nil
	}
}

// NewSafetyReplyNode answers a flagged message without calling the model.
func NewSafetyReplyNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ string) (*schema.Message, error) {
		var category safety.Category
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.GenerationState) error {
			category = safety.Category(s.SafetyCategory)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return schema.AssistantMessage(safety.Reply(category), nil), nil
	})
}

// DegradingRetriever never fails the turn: a retrieval error is logged,
// flagged in state, and replaced by an empty result.
type DegradingRetriever struct {
	Inner retriever.Retriever
}

func (r *DegradingRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	docs, err := r.Inner.Retrieve(ctx, query, opts...)
	if err == nil {
		return docs, nil
	}
	logx.Warn().Err(err).Msg("context retrieval failed, continuing without context")
	_ = compose.ProcessState(ctx, func(_ context.Context, s *model.GenerationState) error {
		s.RetrievalFailed = true
		return nil
	})
	return nil, nil
}

// NewRetrievePostHandler records how many documents were found.
func NewRetrievePostHandler() func(context.Context, []*schema.Document, *model.GenerationState) ([]*schema.Document, error) {
	return func(ctx context.Context, docs []*schema.Document, s *model.GenerationState) ([]*schema.Document, error) {
		s.ContextDocs = len(docs)
		return docs, nil
	}
}

// NewAssembleNode renders the coaching prompt from the retrieved documents
// and the turn input held in state.
func NewAssembleNode(promptTurns int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, docs []*schema.Document) ([]*schema.Message, error) {
		var (
			in     model.GenerationInput
			failed bool
		)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.GenerationState) error {
			in = s.Input
			failed = s.RetrievalFailed
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		return prompts.RenderCoach(ctx, prompts.CoachVars{
			Tone:    in.Tone,
			Topic:   in.Topic,
			Context: formatContext(docs, failed),
			History: formatHistory(in.History, promptTurns),
			Message: in.Message,
		})
	})
}

// NewChatModelPostHandler computes usage cost and rejects empty answers.
func NewChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.GenerationState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.GenerationState) (*schema.Message, error) {
		if out == nil || strings.TrimSpace(out.Content) == "" {
			return nil, ErrEmptyResponse
		}

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			usage := out.ResponseMeta.Usage
			inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     usage.PromptTokens,
				"completion_tokens": usage.CompletionTokens,
				"total_tokens":      usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			state.TotalCostUSD += totalC

			logx.Debug().
				Str("node", NodeChatModel).
				Str("model", modelName).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens).
				Int("context_docs", state.ContextDocs).
				Float64("total_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}
		return out, nil
	}
}
