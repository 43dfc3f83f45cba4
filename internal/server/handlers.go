package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bridgetext/coach-server/internal/agent/model"
	errx "github.com/bridgetext/coach-server/internal/core/error"
)

type tokenRequest struct {
	Token *string `json:"token"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req model.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := s.chat.Chat(c.UserContext(), req)
	if err != nil {
		// The body still carries the token so the client can retry.
		return c.Status(errx.From(err).Status).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" && c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		var req tokenRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		token = deref(req.Token)
	}
	return c.JSON(s.chat.History(c.UserContext(), token))
}

func (s *Server) handleClear(c *fiber.Ctx) error {
	var req tokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	resp, err := s.chat.Clear(c.UserContext(), deref(req.Token))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"session_mode": s.info.SessionMode,
		"model":        s.info.Model,
		"embeddings":   s.info.EmbeddingModel,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
