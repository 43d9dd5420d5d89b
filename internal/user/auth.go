package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

func intClaim(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	}
	return 0, false
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, ok := intClaim(claims["user_id"])
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}

// GetRoleFromCtx returns the role claim; tokens without one are customers.
func GetRoleFromCtx(c *fiber.Ctx) Role {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return ""
	}
	if r, ok := claims["role"].(string); ok && r != "" {
		return Role(r)
	}
	return RoleCustomer
}

func GetDriverIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, ok := intClaim(claims["driver_id"])
	if !ok {
		return 0, fiber.ErrForbidden
	}
	return id, nil
}

// RequireRole rejects requests whose token does not carry one of roles.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := GetUserIDFromCtx(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		have := GetRoleFromCtx(c)
		for _, r := range roles {
			if have == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}
}
