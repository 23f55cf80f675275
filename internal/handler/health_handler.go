package handler

import (
	"context"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/dto"
	"ielts-prep/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DBPinger is satisfied by *sqlx.DB and *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    DBPinger
	cache domain.Cache
}

func NewHealthHandler(db DBPinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check godoc
// @Summary Health check
// @Description Pings the database and Redis
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Cache: "ok"}
	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Error("Database health check failed", zap.Error(err))
		resp.Status, resp.Database = "degraded", "unavailable"
	}
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Error("Redis health check failed", zap.Error(err))
		resp.Status, resp.Cache = "degraded", "unavailable"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
