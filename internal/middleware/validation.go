package middleware

import (
	"ielts-prep/internal/domain"
	"ielts-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const ValidatedModuleKey = "validated_module"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateModuleParam validates the :module path parameter.
func (vm *ValidationMiddleware) ValidateModuleParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		module, errs := vm.validator.ValidateModule("module", c.Params("module"))
		if len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedModuleKey, module)
		return c.Next()
	}
}

// ValidatedModule returns the module stored by ValidateModuleParam.
func ValidatedModule(c *fiber.Ctx) domain.Module {
	module, _ := c.Locals(ValidatedModuleKey).(domain.Module)
	return module
}
