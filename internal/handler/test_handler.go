package handler

import (
	"ielts-prep/internal/domain"
	"ielts-prep/internal/dto"
	"ielts-prep/internal/middleware"
	"ielts-prep/internal/service"
	"ielts-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TestHandler serves stored practice tests.
type TestHandler struct {
	tests     service.SmartTestService
	validator *validation.Validator
}

func NewTestHandler(tests service.SmartTestService) *TestHandler {
	return &TestHandler{tests: tests, validator: validation.NewValidator()}
}

// SelectTest godoc
// @Summary Serve a stored test
// @Description Picks a published test the user has not seen recently, favouring unheard accents. Records the test as served.
// @Tags tests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.SmartTestRequest true "Selection request"
// @Success 200 {object} dto.SmartTestResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tests/smart [post]
func (h *TestHandler) SelectTest(c *fiber.Ctx) error {
	var req dto.SmartTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	module, errs := h.validator.ValidateSmartTestRequest(&req)
	if len(errs) > 0 {
		return errs
	}

	sel, err := h.tests.SelectTest(c.UserContext(), middleware.UserID(c), domain.TestSelectionRequest{
		Module:          module,
		Topic:           req.Topic,
		Subtype:         req.Subtype,
		PreferredAccent: req.PreferredAccent,
		ExcludeIDs:      req.ExcludeIDs,
		UseTopicCycle:   req.UseTopicCycle,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.SmartTestResponse{
		TestID:          sel.Test.ID,
		Module:          string(sel.Test.Module),
		Topic:           sel.Test.Topic,
		Accent:          sel.Test.Accent,
		TimesUsed:       sel.Test.TimesUsed,
		LastUsedAt:      sel.Test.LastUsedAt,
		Payload:         sel.Test.Payload,
		TopicFromCycle:  sel.TopicFromCycle,
		WidenedToModule: sel.WidenedToModule,
	})
}
