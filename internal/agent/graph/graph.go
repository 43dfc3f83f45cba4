package graph

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/bridgetext/coach-server/internal/agent/graph/nodes"
	"github.com/bridgetext/coach-server/internal/agent/graph/observers"
	"github.com/bridgetext/coach-server/internal/agent/model"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

// Runner produces one coaching reply per call.
type Runner interface {
	Generate(ctx context.Context, in model.GenerationInput) (string, error)
}

// Config holds everything needed to compose the coaching graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat model.
type Config struct {
	Client        *genai.Client
	ResponseModel model.ResponseModelConfig
	Retriever     retriever.Retriever
	PromptTurns   int
	TopicField    string
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModel     einomodel.BaseChatModel
	ChatModelName string
	Retriever     retriever.Retriever
	PromptTurns   int
	// TopicField restricts retrieval to the selected topic on the turn that selects it.
	TopicField    string
}

// GraphBuilder handles the construction of the coaching graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.GenerationInput, *schema.Message]
}

type graphRunner struct {
	runnable   compose.Runnable[model.GenerationInput, *schema.Message]
	topicField string
}

func (r *graphRunner) Generate(ctx context.Context, in model.GenerationInput) (string, error) {
	opts := []compose.Option{compose.WithCallbacks(observers.NewAllCallbacks())}
	if r.topicField != "" && in.Topic != "" {
		opts = append(opts, compose.WithRetrieverOption(
			retriever.WithDSLInfo(map[string]any{r.topicField: in.Topic}),
		).DesignateNode(nodes.NodeRetrieve))
	}

	out, err := r.runnable.Invoke(ctx, in, opts...)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nodes.ErrEmptyResponse
	}
	return strings.TrimSpace(out.Content), nil
}

// BuildCoachGraph creates the Gemini response model, builds the graph, and returns a Runner.
func BuildCoachGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}

	cm, err := nodes.NewResponseChatModel(ctx, cfg.Client, cfg.ResponseModel)
	if err != nil {
		return nil, err
	}

	r, err := NewRunner(ctx, &GraphConfig{
		ChatModel:     cm,
		ChatModelName: cfg.ResponseModel.Model,
		Retriever:     cfg.Retriever,
		PromptTurns:   cfg.PromptTurns,
		TopicField:    cfg.TopicField,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Str("model", cfg.ResponseModel.Model).Msg("Coach graph built successfully")
	return r, nil
}

// NewRunner compiles the graph for an already constructed chat model.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable, topicField: config.TopicField}, nil
}

// BuildGraph constructs and returns the compiled coaching graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.GenerationInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, fmt.Errorf("chat model is not initialized")
	}
	if config.Retriever == nil {
		return nil, fmt.Errorf("retriever is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.GenerationInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.GenerationState {
				return &model.GenerationState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	g := b.graph
	errs := []error{
		g.AddLambdaNode(nodes.NodeSafetyScreen,
			nodes.NewSafetyScreenNode(),
			compose.WithStatePreHandler(nodes.NewSafetyScreenPreHandler()),
		),
		g.AddLambdaNode(nodes.NodeSafetyReply, nodes.NewSafetyReplyNode()),
		g.AddRetrieverNode(nodes.NodeRetrieve,
			&nodes.DegradingRetriever{Inner: b.config.Retriever},
			compose.WithStatePostHandler(nodes.NewRetrievePostHandler()),
		),
		g.AddLambdaNode(nodes.NodeAssemble, nodes.NewAssembleNode(b.config.PromptTurns)),
		g.AddChatModelNode(nodes.NodeChatModel,
			b.config.ChatModel,
			compose.WithStatePostHandler(nodes.NewChatModelPostHandler(b.config.ChatModelName)),
		),
	}
	for _, err := range errs {
		if err != nil {
			logx.Error().Err(err).Msg("Error adding graph node")
			return fmt.Errorf("error adding graph node: %w", err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeSafetyScreen},
		{nodes.NodeSafetyReply, compose.END},
		{nodes.NodeRetrieve, nodes.NodeAssemble},
		{nodes.NodeAssemble, nodes.NodeChatModel},
		{nodes.NodeChatModel, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	safetyBranch := compose.NewGraphBranch(
		nodes.NewSafetyCondition(),
		map[string]bool{
			nodes.NodeSafetyReply: true,
			nodes.NodeRetrieve:    true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeSafetyScreen, safetyBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding safety branch")
		return fmt.Errorf("error adding safety branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.GenerationInput, *schema.Message], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
