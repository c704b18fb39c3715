package middleware

import (
	"context"
	"strings"

	"sidebet/internal/auth"
	"sidebet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserDirectory materializes local user records for token subjects.
type UserDirectory interface {
	GetOrCreate(ctx context.Context, subjectID, email string) (*models.User, error)
}

// AuthRequired enforces a valid bearer credential on protected routes. The
// credential's subject is materialized into a local user record on first
// sight, and the user ID is stored in c.Locals("userID").
func AuthRequired(resolver *auth.Resolver, directory UserDirectory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Authorization header required"))
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Invalid authorization header format"))
		}

		identity, err := resolver.Resolve(c.Context(), parts[1])
		if err != nil {
			return models.RespondWithError(c, err)
		}

		user, err := directory.GetOrCreate(c.Context(), identity.Subject, identity.Email)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		c.Locals("userID", user.ID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))

		return c.Next()
	}
}
