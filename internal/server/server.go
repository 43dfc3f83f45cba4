package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bridgetext/coach-server/internal/agent/model"
	errx "github.com/bridgetext/coach-server/internal/core/error"
	logx "github.com/bridgetext/coach-server/pkg/logger"
)

// ChatService is the conversation API the routes expose.
type ChatService interface {
	Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
	History(ctx context.Context, token string) model.HistoryResponse
	Clear(ctx context.Context, token string) (model.ClearResponse, error)
}

// Info is reported by the health endpoint.
type Info struct {
	SessionMode    string
	Model          string
	EmbeddingModel string
}

type Server struct {
	app  *fiber.App
	cfg  model.ServerConfig
	chat ChatService
	info Info
}

func New(cfg model.ServerConfig, chat ChatService, info Info) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "coach-server",
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	s := &Server{app: app, cfg: cfg, chat: chat, info: info}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api")
	api.Post("/chat", s.handleChat)
	api.Get("/history", s.handleHistory)
	api.Post("/history", s.handleHistory)
	api.Post("/clear", s.handleClear)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	logx.Info().Str("port", s.cfg.Port).Str("session_mode", s.info.SessionMode).Msg("Server is running")
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every unhandled error in the chat response shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := errx.SystemErrorMessage

	var fe *fiber.Error
	var appErr *errx.AppError
	switch {
	case errors.As(err, &appErr):
		status, msg = appErr.Status, appErr.Message
	case errors.As(err, &fe):
		status, msg = fe.Code, fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		logx.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logx.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return err
	}
}
