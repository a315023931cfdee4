// Package server contains the HTTP handlers for the publishing API and the feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	_ "acervo/docs" // swagger docs
	"acervo/internal/bootstrap"
	"acervo/internal/config"
	"acervo/internal/featureflags"
	"acervo/internal/middleware"
	"acervo/internal/models"
	"acervo/internal/repository"
	"acervo/internal/service"
	"acervo/internal/storage"

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

const (
	publishRateLimit  = 10
	publishRateWindow = time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	assets         storage.AssetStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	identity       *middleware.IdentityResolver
	featureFlags   *featureflags.Manager
	postRepo       repository.PostRepository
	communityRepo  repository.CommunityRepository
	publisher      *service.Publisher
	feedService    *service.FeedService
	communities    *service.CommunityService
	ownership      *service.OwnershipService
}

// NewServer initializes the runtime and the asset store named by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	assets, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("asset store: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, assets)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, assets storage.AssetStore) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if assets == nil {
		return nil, errors.New("asset store is required")
	}

	postRepo := repository.NewPostRepository(db)
	communityRepo := repository.NewCommunityRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		assets:         assets,
		promMiddleware: middleware.InitMetrics("acervo-api"),
		identity:       middleware.NewIdentityResolver(cfg.JWTSecret, cfg.EmailDomains()),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		postRepo:       postRepo,
		communityRepo:  communityRepo,
	}
	s.publisher = service.NewPublisher(postRepo, assets, cfg.PublishRequireIdentity)
	s.feedService = service.NewFeedService(postRepo)
	s.communities = service.NewCommunityService(communityRepo, postRepo)
	s.ownership = service.NewOwnershipService(postRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request ID into the user context for structured logs
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Documents and cover images under /media are embedded by the frontend
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	if local, ok := s.assets.(*storage.LocalStore); ok {
		app.Static("/media", local.Dir(), fiber.Static{ByteRange: true})
	}

	publishIdentity := s.identity.OptionalIdentity()
	if s.config.PublishRequireIdentity {
		publishIdentity = s.identity.RequireIdentity()
	}

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/",
		publishIdentity,
		middleware.RateLimit(s.redis, publishRateLimit, publishRateWindow, "publish"),
		s.CreatePost,
	)

	api.Get("/me/posts", s.identity.OptionalIdentity(), s.ListMyPosts)

	communities := api.Group("/communities")
	communities.Get("/", s.ListCommunities)
	communities.Get("/:id", s.GetCommunity)
	communities.Get("/:id/posts", s.ListCommunityPosts)

	api.Get("/feature-flags", s.identity.OptionalIdentity(), s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis only backs rate limiting,
// so its absence degrades but does not fail readiness.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
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

// NewApp builds the Fiber app with middleware and routes registered.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Acervo API",
		// Multipart bodies carry the document and cover image plus form fields
		BodyLimit: (s.config.MaxUploadSizeMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, fe)
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.StatusFor(err), err)
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
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
