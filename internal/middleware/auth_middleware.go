package middleware

import (
	"strings"

	"ielts-prep/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
)

// Protected requires a valid platform access token and stores its subject
// as the user id.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		// fasthttp trims trailing whitespace, so "Bearer " arrives as "Bearer".
		tokenString := ""
		if strings.TrimSpace(authHeader) != strings.TrimSpace(BearerSchema) {
			if !strings.HasPrefix(authHeader, BearerSchema) {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Code:    "INVALID_AUTH_SCHEME",
					Message: "Authorization scheme is not Bearer",
					Status:  fiber.StatusUnauthorized,
				})
			}
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := authService.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Token is invalid or expired",
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID())
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" when the route is not
// behind Protected.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
