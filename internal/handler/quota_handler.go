package handler

import (
	"ielts-prep/internal/domain"
	"ielts-prep/internal/dto"
	"ielts-prep/internal/middleware"
	"ielts-prep/internal/service"
	"ielts-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuotaHandler exposes the daily provider token budget.
type QuotaHandler struct {
	quota     service.QuotaService
	validator *validation.Validator
}

func NewQuotaHandler(quota service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota, validator: validation.NewValidator()}
}

// GetStatus godoc
// @Summary Quota availability
// @Description Reports today's usage and whether a test of the given module and difficulty fits in the remaining budget
// @Tags quota
// @Produce json
// @Security ApiKeyAuth
// @Param module query string false "Module to estimate for"
// @Param difficulty query string false "Difficulty to estimate for" default(medium)
// @Success 200 {object} dto.QuotaStatusResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quota [get]
func (h *QuotaHandler) GetStatus(c *fiber.Ctx) error {
	estimate := 0
	if raw := c.Query("module"); raw != "" {
		module, errs := h.validator.ValidateModule("module", raw)
		difficulty, diffErrs := h.validator.ValidateDifficulty("difficulty", c.Query("difficulty"))
		errs = append(errs, diffErrs...)
		if len(errs) > 0 {
			return errs
		}
		estimate = domain.EstimateCost(module, difficulty)
	}

	status, err := h.quota.CheckAvailability(c.UserContext(), middleware.UserID(c), estimate)
	if err != nil {
		return err
	}

	return c.JSON(dto.QuotaStatusResponse{
		HasEnough:     status.HasEnough,
		Remaining:     status.Remaining,
		PercentUsed:   status.PercentUsed,
		TokensUsed:    status.TokensUsed,
		RequestsCount: status.RequestsCount,
		Limit:         status.Limit,
		EstimatedCost: status.EstimatedCost,
	})
}

// RecordUsage godoc
// @Summary Record provider usage
// @Description Adds tokens spent by another backend function to today's usage and counts one request
// @Tags quota
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.RecordUsageRequest true "Tokens used"
// @Success 200 {object} dto.UsageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quota/usage [post]
func (h *QuotaHandler) RecordUsage(c *fiber.Ctx) error {
	var req dto.RecordUsageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateUsageRequest(&req); len(errs) > 0 {
		return errs
	}

	usage, err := h.quota.RecordUsage(c.UserContext(), middleware.UserID(c), req.TokensUsed)
	if err != nil {
		return err
	}

	return c.JSON(dto.UsageResponse{
		Date:          usage.Date,
		TokensUsed:    usage.TokensUsed,
		RequestsCount: usage.RequestsCount,
	})
}

// ResetToday godoc
// @Summary Reset today's usage tracking
// @Description Clears the local usage record for today. The provider's real quota is not affected.
// @Tags quota
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.QuotaResetResponse
// @Router /quota/today [delete]
func (h *QuotaHandler) ResetToday(c *fiber.Ctx) error {
	reset, err := h.quota.ResetToday(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(dto.QuotaResetResponse{
		DisplayOnly: reset.DisplayOnly,
		Message:     reset.Message,
		Date:        reset.Date,
	})
}
