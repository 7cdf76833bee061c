// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/VlasovDmitriy/ParentHelperPro-backend/docs" // swagger docs
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/cache"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/config"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/database"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/featureflags"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/middleware"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	postRepo       repository.PostRepository
	tagRepo        repository.TagRepository
	featureFlags   *featureflags.Manager

	tokenService         *service.TokenService
	registrationService  *service.RegistrationService
	passwordResetService *service.PasswordResetService
	avatarService        *service.AvatarService
	postService          *service.PostService
	userService          *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish DB/Redis themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)

	prom := middleware.InitMetrics("parenthelper-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		postRepo:       postRepo,
		tagRepo:        tagRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.avatarService = service.NewAvatarService(cfg)
	server.tokenService = service.NewTokenService(cfg, userRepo)
	server.registrationService = service.NewRegistrationService(userRepo, server.avatarService)
	server.passwordResetService = service.NewPasswordResetService(userRepo, profileRepo)
	server.postService = service.NewPostService(postRepo, tagRepo, userRepo)
	server.userService = service.NewUserService(userRepo, profileRepo, server.featureFlags)

	return server, nil
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

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

	// Uploaded avatars are served from the media directory.
	app.Static("/"+s.config.MediaDir, s.config.MediaDir)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// API schema + swagger UI
	app.Get("/api/schema/", s.APISchema)
	app.Get("/api/docs/*", swagger.HandlerDefault)

	// Registration and token endpoints
	app.Post("/register/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)

	token := app.Group("/api/token")
	token.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "token"), s.ObtainToken)
	token.Post("/refresh/", s.RefreshToken)
	token.Post("/verify/", s.VerifyToken)

	// Password reset via secret word
	app.Post("/password_reset_request/", middleware.RateLimit(
		s.redis, 5, 15*time.Minute, "password_reset"), s.PasswordResetRequest)
	app.Post("/password_reset/", middleware.RateLimit(
		s.redis, 5, 15*time.Minute, "password_reset"), s.PasswordReset)

	// Public filtered feed
	app.Get("/posts/", s.FilterPosts)

	// Protected routes
	authed := s.AuthRequired()

	v1 := app.Group("/api/v1", authed)
	v1.Get("/userlist/", s.UserList)
	v1.Get("/postlist/", s.ListPosts)
	v1.Post("/postlist/", s.CreatePost)
	v1.Put("/postlist/:id", s.UpdatePost)
	v1.Delete("/postlist/:id", s.DeletePost)

	app.Post("/get-user-id/", authed, s.DecodeToken)

	app.Get("/profile/", authed, s.GetProfile)
	app.Post("/update_avatar/", authed, s.UpdateAvatar)
	app.Put("/profile/update/", authed, s.UpdateProfile)
	app.Post("/profile/follow/:user_id/", authed, s.FollowUser)
	app.Delete("/profile/follow/:user_id/", authed, s.UnfollowUser)

	app.Get("/user/profile_by_post/:post_id/", authed, s.ProfileByPost)

	app.Delete("/delete_user/:user_id/", authed, s.StaffRequired(), s.DeleteUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API works without Redis, just slower and unthrottled.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It accepts access
// tokens only; refresh tokens are rejected even though they verify.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		claims, err := s.tokenService.Parse(parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if claims.TokenType != service.TokenTypeAccess {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		// A token can outlive its account; the subject must still exist.
		// The lookup is cache-backed so warm requests stay cheap.
		if _, err := s.userRepo.GetByID(c.UserContext(), claims.UserID); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}

		// Store user ID in locals and sync to UserContext for logging.
		c.Locals("userID", claims.UserID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// StaffRequired returns middleware that rejects non-staff users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		staff, err := s.isStaff(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !staff {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Staff access required"))
		}

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "ParentHelperPro API",
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
