package auth

import (
	"github.com/gofiber/fiber/v2"
)

// ClaimsContextKey is where the guard middleware stores validated
// claims on the request context
const ClaimsContextKey = "auth_claims"

// Guard enforces role based authorization on top of resolved
// identities. Role policy lives here and nowhere else: admin satisfies
// every requirement, other roles only their own.
type Guard struct {
	tokens TokenService
	logger Logger
}

// NewGuard returns a Guard bound to a token service
func NewGuard(tokens TokenService) *Guard {
	return &Guard{
		tokens: tokens,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger
func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// RequireAuthenticated fails with Unauthorized when no identity was
// resolved
func (g *Guard) RequireAuthenticated(claims AuthClaims) (AuthClaims, error) {
	if claims == nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// RequireRole fails with Unauthorized for anonymous callers and with
// Forbidden for authenticated callers lacking the role. Admin passes
// any requirement.
func (g *Guard) RequireRole(claims AuthClaims, role UserRole) (AuthClaims, error) {
	claims, err := g.RequireAuthenticated(claims)
	if err != nil {
		return nil, err
	}

	if !claims.Satisfies(role) {
		return nil, ErrForbidden
	}

	return claims, nil
}

// Protected returns fiber middleware that validates the bearer token
// and, when roles are given, enforces that the identity satisfies at
// least one of them. Validated claims are stored in the request locals
// under ClaimsContextKey.
func (g *Guard) Protected(roles ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := StripBearerPrefix(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return unauthorizedResponse(c)
		}

		claims, err := g.tokens.Validate(raw)
		if err != nil {
			g.logger.Debug("guard rejected token: %v", err)
			return unauthorizedResponse(c)
		}

		if len(roles) > 0 && !satisfiesAny(claims, roles) {
			g.logger.Debug("guard denied role %s for account %s", claims.Role(), claims.UserID())
			return forbiddenResponse(c)
		}

		c.Locals(ClaimsContextKey, claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims the guard middleware stored for
// this request
func ClaimsFromCtx(c *fiber.Ctx) (AuthClaims, bool) {
	claims, ok := c.Locals(ClaimsContextKey).(AuthClaims)
	return claims, ok
}

func satisfiesAny(claims AuthClaims, roles []UserRole) bool {
	for _, role := range roles {
		if claims.Satisfies(role) {
			return true
		}
	}
	return false
}

func unauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized - Invalid or expired token",
	})
}

func forbiddenResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden - Insufficient permissions",
	})
}
