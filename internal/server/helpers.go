package server

import (
	"context"
	"errors"
	"strings"

	"devconnect/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseObjectID extracts a route parameter by name as a Mongo ObjectID.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseObjectID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "user_id" -> "user ID", "exp_id" -> "experience ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "_id") {
		prefix := param[:len(param)-3]
		if prefix == "exp" {
			prefix = "experience"
		}
		return strings.ReplaceAll(prefix, "_", " ") + " ID"
	}
	return param
}

// currentUserID returns the authenticated user's id set by the auth middleware.
func (s *Server) currentUserID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals("userID").(primitive.ObjectID)
	return id
}

// currentProfileID returns the caller's profile id set by the
// profile-ownership middleware.
func (s *Server) currentProfileID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals("profileID").(primitive.ObjectID)
	return id
}

// validateStruct runs the request struct through the validator. On failure it
// writes a 400 response with one message per failing field and returns
// errResponseWritten.
func (s *Server) validateStruct(c *fiber.Ctx, req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}

	msgs := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, "please include a valid "+field)
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	_ = models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError(strings.Join(msgs, "; ")))
	return errResponseWritten
}

// populateUser resolves and embeds the linked user's public fields into a
// profile response. The store has no foreign keys, so a dangling reference
// simply leaves the field empty.
func (s *Server) populateUser(ctx context.Context, p *models.Profile) {
	if p == nil {
		return
	}
	if user, err := s.userRepo.GetByID(ctx, p.UserID); err == nil && user != nil {
		p.User = user.Public()
	}
}
