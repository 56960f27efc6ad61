package handler

import (
	"context"
	"quizbox/internal/domain"
	"quizbox/internal/logger"
	"quizbox/internal/service"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the database and the cache are reachable.
type HealthHandler struct {
	quizzes service.QuizService
	cache   domain.Cache
}

func NewHealthHandler(quizzes service.QuizService, cache domain.Cache) *HealthHandler {
	return &HealthHandler{quizzes: quizzes, cache: cache}
}

// Check handles GET /healthz
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := h.quizzes.Ping(ctx); err != nil {
		return h.unavailable(c, "database", err)
	}
	if err := h.cache.Ping(ctx); err != nil {
		return h.unavailable(c, "cache", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HealthHandler) unavailable(c *fiber.Ctx, dependency string, err error) error {
	logger.Get().Warn("Health check failed", zap.String("dependency", dependency), zap.Error(err))
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status": "unavailable",
		"failed": dependency,
	})
}
