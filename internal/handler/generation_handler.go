package handler

import (
	"ielts-prep/internal/domain"
	"ielts-prep/internal/dto"
	"ielts-prep/internal/middleware"
	"ielts-prep/internal/service"
	"ielts-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GenerationHandler exposes live test generation.
type GenerationHandler struct {
	generation service.GenerationService
	validator  *validation.Validator
}

func NewGenerationHandler(generation service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generation: generation, validator: validation.NewValidator()}
}

// Generate godoc
// @Summary Generate a test
// @Description Generates a test with the AI provider, retrying once, and falls back to a stored preset. The body always describes the outcome.
// @Tags generation
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GenerateTestRequest true "Generation options"
// @Success 200 {object} dto.GenerateTestResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} dto.GenerateTestResponse "cancelled"
// @Failure 502 {object} dto.GenerateTestResponse "provider rejected credentials"
// @Failure 503 {object} dto.GenerateTestResponse "no test could be produced"
// @Router /generations [post]
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	opts, errs := h.validator.ValidateGenerateRequest(&req)
	if len(errs) > 0 {
		return errs
	}

	result := h.generation.Generate(c.UserContext(), middleware.UserID(c), req.RequestID, opts)

	status := fiber.StatusOK
	if !result.Success {
		status = middleware.StatusForCode(result.ErrorCode)
	}
	return c.Status(status).JSON(toGenerateResponse(result))
}

// Cancel godoc
// @Summary Cancel a generation
// @Description Cancels the caller's in-flight generation with the given request id
// @Tags generation
// @Produce json
// @Security ApiKeyAuth
// @Param request_id path string true "Request id"
// @Success 200 {object} dto.CancelGenerationResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /generations/{request_id} [delete]
func (h *GenerationHandler) Cancel(c *fiber.Ctx) error {
	requestID := c.Params("request_id")
	if errs := h.validator.ValidateRequestID(requestID); len(errs) > 0 {
		return errs
	}
	userID := middleware.UserID(c)
	if userID == "" {
		return domain.NewUnauthenticatedError()
	}

	if !h.generation.Cancel(userID, requestID) {
		return domain.NewNotFoundError("no generation in progress with this request id")
	}
	return c.JSON(dto.CancelGenerationResponse{RequestID: requestID, Cancelled: true})
}

func toGenerateResponse(r *domain.GenerationResult) dto.GenerateTestResponse {
	return dto.GenerateTestResponse{
		RequestID:    r.RequestID,
		Success:      r.Success,
		Status:       string(r.Status),
		TestID:       r.TestID,
		Data:         r.Data,
		UsedFallback: r.UsedFallback,
		ErrorCode:    string(r.ErrorCode),
		Error:        r.Error,
		Attempts:     r.Attempts,
		TokensUsed:   r.TokensUsed,
		QuotaWarning: r.QuotaWarning,
	}
}
