package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/utils"
)

type principalKey struct{}

// Authorization validates the bearer token and loads the principal into the
// request context.
func Authorization(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return reject(c, errcode.Unauthorized)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return reject(c, errcode.Unauthorized)
		}

		principal, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return reject(c, errcode.Unauthorized)
		}

		c.Locals(principalKey{}, principal)
		return c.Next()
	}
}

// RequireType admits only the listed principal types. It must run after
// Authorization.
func RequireType(types ...utils.PrincipalType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return reject(c, errcode.Unauthorized)
		}
		for _, t := range types {
			if principal.Type == t {
				return c.Next()
			}
		}
		return reject(c, errcode.PrincipalType)
	}
}

// GetPrincipal extracts the authenticated principal from context.
func GetPrincipal(c *fiber.Ctx) (utils.Principal, bool) {
	principal, ok := c.Locals(principalKey{}).(utils.Principal)
	return principal, ok
}

func reject(c *fiber.Ctx, code errcode.Code) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"status":  "error",
		"data":    fiber.Map{"errCode": code},
		"message": errcode.Message(code),
	})
}
