package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bridgetext/coach-server/internal/agent/chat"
	"github.com/bridgetext/coach-server/internal/agent/flow"
	"github.com/bridgetext/coach-server/internal/agent/graph"
	"github.com/bridgetext/coach-server/internal/agent/graph/nodes"
	"github.com/bridgetext/coach-server/internal/agent/model"
	"github.com/bridgetext/coach-server/internal/agent/repo"
	"github.com/bridgetext/coach-server/internal/agent/retrieval"
	"github.com/bridgetext/coach-server/internal/agent/session"
	"github.com/bridgetext/coach-server/internal/agent/token"
	"github.com/bridgetext/coach-server/internal/core"
	"github.com/bridgetext/coach-server/internal/server"
	logx "github.com/bridgetext/coach-server/pkg/logger"
	pkgredis "github.com/bridgetext/coach-server/pkg/redis"
	"github.com/bridgetext/coach-server/pkg/vectorstore/qdrant"
)

// AppConfig defines all configurable parameters of the server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	Server model.ServerConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Response     model.ResponseModelConfig
	Embedding    model.EmbeddingConfig
	Retrieval    model.RetrievalConfig
	Session      model.SessionConfig
	Conversation model.ConversationConfig

	// Infrastructure, used when SESSION_MODE=store and SESSION_STORE=redis
	Redis pkgredis.Config
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})

	if err := run(cfg); err != nil {
		logx.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg AppConfig) error {
	ctx := context.Background()
	limits := cfg.Conversation.Limits()

	client, err := nodes.NewGeminiClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return err
	}

	embedder, err := retrieval.NewEmbedder(client, retrieval.EmbedderConfig{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := qdrant.New(qdrant.Config{
		URL:            cfg.Retrieval.QdrantURL,
		CollectionName: cfg.Retrieval.Collection,
		APIKey:         cfg.Retrieval.QdrantAPIKey,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	scenarios, err := retrieval.NewScenarioRetriever(retrieval.RetrieverConfig{
		Embedder: embedder,
		Store:    store,
		TopK:     cfg.Retrieval.TopK,
		MinScore: cfg.Retrieval.MinScore,
	})
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	runner, err := graph.BuildCoachGraph(ctx, graph.Config{
		Client:        client,
		ResponseModel: cfg.Response,
		Retriever:     scenarios,
		PromptTurns:   limits.PromptTurns,
		TopicField:    cfg.Retrieval.TopicField,
	})
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	boundary, closeBoundary, err := newBoundary(ctx, cfg, limits)
	if err != nil {
		return err
	}
	defer closeBoundary()

	svc, err := chat.NewService(chat.Config{
		Machine:           flow.NewMachine(limits),
		Boundary:          boundary,
		Generator:         runner,
		GenerationTimeout: cfg.Conversation.GenerationTimeout,
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, svc, server.Info{
		SessionMode:    boundary.Mode(),
		Model:          cfg.Response.Model,
		EmbeddingModel: cfg.Embedding.Model,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logx.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newBoundary picks where conversation state lives.
func newBoundary(ctx context.Context, cfg AppConfig, limits model.Limits) (session.Boundary, func(), error) {
	noop := func() {}

	switch cfg.Session.Mode {
	case model.SessionModeToken:
		if cfg.Session.TokenSecret == "" {
			return nil, noop, fmt.Errorf("SESSION_TOKEN_SECRET is required when SESSION_MODE=%s", model.SessionModeToken)
		}
		codec, err := token.NewCodec([]byte(cfg.Session.TokenSecret),
			token.WithTTL(cfg.Session.TokenTTL),
			token.WithLimits(limits),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create token codec: %w", err)
		}
		return session.NewTokenBoundary(codec), noop, nil

	case model.SessionModeStore:
		switch cfg.Session.Store {
		case "memory":
			logx.Warn().Msg("Session state kept in process memory; it is lost on restart")
			return session.NewStoreBoundary(repo.NewMemoryStateRepository(cfg.Session.StoreTTL), limits), noop, nil
		case "redis":
			rdb, err := cfg.Redis.New(ctx)
			if err != nil {
				return nil, noop, fmt.Errorf("failed to initialise Redis client: %w", err)
			}
			logx.Info().Msg("Connected to Redis successfully")
			closeFn := func() { _ = rdb.Close() }
			return session.NewStoreBoundary(repo.NewRedisStateRepository(rdb, cfg.Session.StoreTTL), limits), closeFn, nil
		default:
			return nil, noop, fmt.Errorf("unknown SESSION_STORE %q", cfg.Session.Store)
		}

	default:
		return nil, noop, fmt.Errorf("unknown SESSION_MODE %q", cfg.Session.Mode)
	}
}
