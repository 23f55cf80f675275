package handler

import (
	"ielts-prep/internal/dto"
	"ielts-prep/internal/middleware"
	"ielts-prep/internal/service"
	"ielts-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TopicHandler serves the smart topic cycle.
type TopicHandler struct {
	topics    service.TopicCycleService
	validator *validation.Validator
}

func NewTopicHandler(topics service.TopicCycleService) *TopicHandler {
	return &TopicHandler{topics: topics, validator: validation.NewValidator()}
}

// NextTopic godoc
// @Summary Next topic in the smart cycle
// @Description Returns the first catalog topic with the lowest completion count for the user
// @Tags topics
// @Produce json
// @Security ApiKeyAuth
// @Param module path string true "Module" Enums(reading, listening, writing, speaking)
// @Param subtype query string false "Catalog subtype, e.g. task1 or part2"
// @Success 200 {object} dto.NextTopicResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /topics/{module}/next [get]
func (h *TopicHandler) NextTopic(c *fiber.Ctx) error {
	module := middleware.ValidatedModule(c)

	sel, err := h.topics.NextTopic(c.UserContext(), middleware.UserID(c), module, c.Query("subtype"))
	if err != nil {
		return err
	}

	return c.JSON(dto.NextTopicResponse{
		Module:     string(sel.Module),
		Subtype:    sel.Subtype,
		Topic:      sel.Topic,
		CycleCount: sel.CycleCount,
		Counts:     sel.Counts,
	})
}

// RecordCompletion godoc
// @Summary Record a completed topic
// @Description Increments the user's completion counter for the topic and returns the new count
// @Tags topics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param module path string true "Module" Enums(reading, listening, writing, speaking)
// @Param request body dto.RecordCompletionRequest true "Completed topic"
// @Success 200 {object} dto.RecordCompletionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /topics/{module}/completions [post]
func (h *TopicHandler) RecordCompletion(c *fiber.Ctx) error {
	module := middleware.ValidatedModule(c)

	var req dto.RecordCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateCompletionRequest(&req); len(errs) > 0 {
		return errs
	}

	count, err := h.topics.RecordCompletion(c.UserContext(), middleware.UserID(c), module, req.Topic)
	if err != nil {
		return err
	}

	return c.JSON(dto.RecordCompletionResponse{
		Module:          string(module),
		Topic:           req.Topic,
		CompletionCount: count,
	})
}
