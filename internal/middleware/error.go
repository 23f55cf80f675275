package middleware

import (
	"errors"
	"net/http"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Status  int                `json:"status"`
	Errors  []domain.FieldError `json:"errors"`
}

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get()

		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:    string(domain.ErrValidation),
				Message: "Request validation failed",
				Status:  http.StatusBadRequest,
				Errors:  validationErrs,
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := StatusForCode(domainErr.Code)
			message := domainErr.Message
			if statusCode >= http.StatusInternalServerError {
				log.Error("Domain error occurred",
					zap.String("path", c.Path()),
					zap.String("code", string(domainErr.Code)),
					zap.Error(err),
				)
				message = domain.UserMessage(domainErr.Code)
			} else {
				log.Info("Request rejected",
					zap.String("path", c.Path()),
					zap.String("code", string(domainErr.Code)),
					zap.String("message", domainErr.Message),
				)
			}

			return c.Status(statusCode).JSON(ErrorResponse{
				Code:    string(domainErr.Code),
				Message: message,
				Status:  statusCode,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.ErrInternal),
			Message: domain.UserMessage(domain.ErrInternal),
			Status:  http.StatusInternalServerError,
		})
	}
}

// StatusForCode maps domain error codes to HTTP status codes.
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrNotFound, domain.ErrNoTestsAvailable:
		return http.StatusNotFound
	case domain.ErrInvalidInput, domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrUnauthenticated:
		return http.StatusUnauthorized
	case domain.ErrCancelled:
		return http.StatusConflict
	case domain.ErrProviderCredentials:
		return http.StatusBadGateway
	case domain.ErrProviderQuotaExceeded, domain.ErrProviderError, domain.ErrInvalidPayload, domain.ErrNoFallbackAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
