package middleware

import (
	"context"

	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserFinder looks up a user by id. Implemented by repository.UserRepository.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ProfileFinder looks up a profile by owning user id. Implemented by
// repository.ProfileRepository.
type ProfileFinder interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
}

// ProfileRequired enforces that the authenticated user has a fully
// provisioned profile. It must run after AuthRequired. On success the
// caller's profile id is stored in locals so handlers do not re-fetch it.
func ProfileRequired(users UserFinder, profiles ProfileFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(primitive.ObjectID)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization denied, try login"))
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Are you logged in?"))
		}

		profile, err := profiles.GetByUserID(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if profile == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Create a profile"))
		}

		c.Locals("profileID", profile.ID)

		return c.Next()
	}
}
