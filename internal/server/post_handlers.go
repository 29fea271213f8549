package server

import (
	"errors"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}
	if err := validation.ValidatePostText(req.Text); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	post := &models.Post{
		ProfileID: s.currentProfileID(c),
		Text:      req.Text,
	}
	if err := s.postRepo.Create(c.UserContext(), post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}
	if err := validation.ValidatePostText(req.Text); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	if post.ProfileID != s.currentProfileID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("User not authorized"))
	}

	updated, err := s.postRepo.UpdateText(c.UserContext(), postID, req.Text)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if updated == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.JSON(updated)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	if post.ProfileID != s.currentProfileID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("User not authorized"))
	}

	if err := s.postRepo.Delete(c.UserContext(), postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.Like(c.UserContext(), postID, s.currentProfileID(c))
	if errors.Is(err, repository.ErrAlreadyLiked) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post already liked"))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.JSON(post.Likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id. Only the caller's own like is
// removed; other profiles' likes are untouched.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.Unlike(c.UserContext(), postID, s.currentProfileID(c))
	if errors.Is(err, repository.ErrNotLiked) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Like post to proceed"))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.JSON(post.Likes)
}

// CreateComment handles POST /api/posts/comment/:id
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validateStruct(c, req); err != nil {
		return nil
	}

	comment := models.Comment{
		ID:      primitive.NewObjectID(),
		Profile: s.currentProfileID(c),
		Text:    req.Text,
		Date:    time.Now().UTC(),
	}

	post, err := s.postRepo.AddComment(c.UserContext(), postID, comment)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.Status(fiber.StatusCreated).JSON(post.Comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseObjectID(c, "comment_id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment"))
	}
	if comment.Profile != s.currentProfileID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("User not authorized"))
	}

	updated, err := s.postRepo.RemoveComment(c.UserContext(), postID, commentID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if updated == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}
	return c.JSON(updated.Comments)
}
