package middleware

import (
	"strings"

	"hire_server/core/domain"
	"hire_server/core/port/out"
	"hire_server/core/service/auth"
	"hire_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// RequireAuth verifies the bearer token, rejects revoked tokens, and
// stores the actor on the request context.
func RequireAuth(tokens *auth.TokenManager, tokenStore out.TokenStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return apperr.Unauthorized("missing bearer token")
		}

		if tokenStore != nil {
			revoked, err := tokenStore.IsRevoked(c.Context(), token)
			if err == nil && revoked {
				return apperr.InvalidToken("token has been revoked")
			}
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			return err
		}

		c.Locals(actorKey, domain.Actor{UserID: claims.UserID, Role: claims.Role})
		c.Locals("token", token)
		return c.Next()
	}
}

// RequireRole allows only the given roles past. Must run after
// RequireAuth.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(actorKey).(domain.Actor)
		if !ok {
			return apperr.Unauthorized("")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("insufficient role")
	}
}

// ActorFromCtx returns the authenticated actor stored by RequireAuth.
func ActorFromCtx(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	if !ok {
		return domain.Actor{}, apperr.Unauthorized("")
	}
	return actor, nil
}

// TokenFromCtx returns the raw bearer token stored by RequireAuth.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals("token").(string)
	return token
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
