package server

import (
	"sync"

	"devconnect/internal/models"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UpsertMyProfile handles POST /api/profiles. Creating and editing share one
// endpoint: the profile is keyed by the caller's user id.
func (s *Server) UpsertMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username  string           `json:"username" validate:"required"`
		Birthday  string           `json:"birthday" validate:"required"`
		Website   string           `json:"website"`
		Skills    models.SkillList `json:"skills"`
		Bio       string           `json:"bio"`
		Facebook  string           `json:"facebook"`
		Instagram string           `json:"instagram"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}

	profile := &models.Profile{
		UserID:   s.currentUserID(c),
		Username: req.Username,
		Birthday: req.Birthday,
		Skills:   []string(req.Skills),
		Bio:      req.Bio,
	}

	// Optional URLs are stored in canonical https form.
	for _, f := range []struct {
		raw  string
		dest *string
	}{
		{req.Website, &profile.Website},
		{req.Facebook, &profile.Social.Facebook},
		{req.Instagram, &profile.Social.Instagram},
	} {
		if f.raw == "" {
			continue
		}
		normalized, err := validation.NormalizeURL(f.raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid URL: "+f.raw))
		}
		*f.dest = normalized
	}

	saved, err := s.profileRepo.Upsert(c.UserContext(), profile)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.populateUser(c.UserContext(), saved)
	return c.JSON(saved)
}

// GetMyProfile handles GET /api/profiles/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileRepo.GetByUserID(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profiles
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	for _, p := range profiles {
		s.populateUser(c.UserContext(), p)
	}
	return c.JSON(profiles)
}

// GetProfileByUserID handles GET /api/profiles/user/:user_id
func (s *Server) GetProfileByUserID(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "user_id")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.GetByUserID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}

// GetProfileByUsername handles GET /api/profiles/name/:username
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	username := c.Params("username")

	profile, err := s.profileRepo.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}

// GetProfileByID handles GET /api/profiles/:profile_id
func (s *Server) GetProfileByID(c *fiber.Ctx) error {
	profileID, err := s.parseObjectID(c, "profile_id")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.GetByID(c.UserContext(), profileID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}

// DeleteMyAccount handles DELETE /api/profiles. It removes the caller's
// posts, profile, and user record after re-verifying the password.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}

	userID := s.currentUserID(c)
	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid credentials"))
	}

	// Cascade across collections. The store has no cross-collection
	// transactions here, so the deletions run best-effort in parallel and
	// the first error wins.
	profileID := s.currentProfileID(c)
	ctx := c.UserContext()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for _, fn := range []func() error{
		func() error { return s.postRepo.DeleteByProfileID(ctx, profileID) },
		func() error { return s.profileRepo.DeleteByUserID(ctx, userID) },
		func() error { return s.userRepo.Delete(ctx, userID) },
	} {
		wg.Add(1)
		go func(fn func() error) {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}(fn)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profiles/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title" validate:"required"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}

	exp := models.Experience{
		ID:       primitive.NewObjectID(),
		Title:    req.Title,
		Location: req.Location,
	}

	profile, err := s.profileRepo.AddExperience(c.UserContext(), s.currentUserID(c), exp)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}

// GetExperience handles GET /api/profiles/experience/:exp_id
func (s *Server) GetExperience(c *fiber.Ctx) error {
	expID, err := s.parseObjectID(c, "exp_id")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.GetByID(c.UserContext(), s.currentProfileID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	for i := range profile.Experience {
		if profile.Experience[i].ID == expID {
			return c.JSON(profile.Experience[i])
		}
	}
	return models.RespondWithError(c, fiber.StatusNotFound,
		models.NewNotFoundError("Experience"))
}

// DeleteExperience handles DELETE /api/profiles/experience/:exp_id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	expID, err := s.parseObjectID(c, "exp_id")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.RemoveExperience(c.UserContext(), s.currentUserID(c), expID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile"))
	}

	s.populateUser(c.UserContext(), profile)
	return c.JSON(profile)
}
