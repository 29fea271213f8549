// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *mongo.Database
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	postRepo       repository.PostRepository
	validate       *validator.Validate
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("index creation failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *mongo.Database, redisClient *redis.Client) *Server {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("devconnect-api"),
		validate:       validator.New(),
	}
	if db != nil {
		server.userRepo = repository.NewUserRepository(db)
		server.profileRepo = repository.NewProfileRepository(db)
		server.postRepo = repository.NewPostRepository(db)
	}

	return server
}

// AuthRequired returns the authentication middleware.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired
}

// ProfileRequired returns the profile-ownership middleware bound to this
// server's repositories.
func (s *Server) ProfileRequired() fiber.Handler {
	return middleware.ProfileRequired(s.userRepo, s.profileRepo)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.TokenHeader,
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Registration and login
	api.Post("/users", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Post("/auth", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Get("/auth", s.AuthRequired(), s.GetAuthedUser)

	// Profile routes
	profiles := api.Group("/profiles")
	profiles.Post("/", s.AuthRequired(), s.UpsertMyProfile)
	profiles.Get("/me", s.AuthRequired(), s.GetMyProfile)
	profiles.Get("/", s.AuthRequired(), s.ProfileRequired(), s.GetProfiles)
	profiles.Delete("/", s.AuthRequired(), s.ProfileRequired(), s.DeleteMyAccount)
	profiles.Put("/experience", s.AuthRequired(), s.ProfileRequired(), s.AddExperience)
	profiles.Get("/experience/:exp_id", s.AuthRequired(), s.ProfileRequired(), s.GetExperience)
	profiles.Delete("/experience/:exp_id", s.AuthRequired(), s.ProfileRequired(), s.DeleteExperience)
	// Public lookups. Specific prefixes must precede the generic /:profile_id route.
	profiles.Get("/user/:user_id", s.GetProfileByUserID)
	profiles.Get("/name/:username", s.GetProfileByUsername)
	profiles.Get("/:profile_id", s.GetProfileByID)

	// Post routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:id", s.GetPost)

	protected := posts.Group("", s.AuthRequired(), s.ProfileRequired())
	protected.Post("/", s.CreatePost)
	// like/unlike/comment before the generic /:id mutations
	protected.Put("/like/:id", s.LikePost)
	protected.Put("/unlike/:id", s.UnlikePost)
	protected.Post("/comment/:id", s.CreateComment)
	protected.Delete("/comment/:id/:comment_id", s.DeleteComment)
	protected.Put("/:id", s.UpdatePost)
	protected.Delete("/:id", s.DeletePost)

	// Fallback for unmatched routes
	app.Use(func(c *fiber.Ctx) error {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Route"))
	})
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the server can reach its backing stores.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "mongo": "ok", "redis": "disabled"}
	healthy := true

	if s.db == nil {
		status["mongo"] = "unavailable"
		healthy = false
	} else if err := s.db.Client().Ping(ctx, nil); err != nil {
		status["mongo"] = "unavailable"
		healthy = false
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// Cache is optional; report but stay ready.
			status["redis"] = "unavailable"
		} else {
			status["redis"] = "ok"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	return database.Disconnect(ctx, s.db)
}
