package handler

import (
	"ielts-prep/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health     *HealthHandler
	Topics     *TopicHandler
	Tests      *TestHandler
	Generation *GenerationHandler
	Quota      *QuotaHandler
}

// RegisterRoutes mounts the API on api. Every route except /health goes
// through protected.
func RegisterRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	validate := middleware.NewValidationMiddleware()

	api.Get("/health", h.Health.Check)

	topics := api.Group("/topics", protected)
	topics.Get("/:module/next", validate.ValidateModuleParam(), h.Topics.NextTopic)
	topics.Post("/:module/completions", validate.ValidateModuleParam(), h.Topics.RecordCompletion)

	api.Post("/tests/smart", protected, h.Tests.SelectTest)

	generations := api.Group("/generations", protected)
	generations.Post("/", h.Generation.Generate)
	generations.Delete("/:request_id", h.Generation.Cancel)

	quota := api.Group("/quota", protected)
	quota.Get("/", h.Quota.GetStatus)
	quota.Post("/usage", h.Quota.RecordUsage)
	quota.Delete("/today", h.Quota.ResetToday)
}
