package bootstrap

import (
	"strings"
	"time"

	"hire_server/adapter/in/http"
	"hire_server/config"
	"hire_server/infra/middleware"
	"hire_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewAPI builds the fiber application with the full middleware stack
// and every route registered.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "hireboard-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,

		// go-json is a drop-in for encoding/json, roughly 2-3x faster
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 12 * 1024 * 1024, // uploads are capped at 10MB plus form overhead
	})

	// Global middleware stack (order matters)
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS: credentials require explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health checks (no auth)
	healthHandler := http.NewHealthHandler(deps.Mongo, deps.SQLDB, deps.Redis)
	healthHandler.Register(app)

	api := app.Group("/api/v1")

	rateLimiter := middleware.NewRateLimiter(deps.Cache, cfg.RateLimitPerMin, time.Minute)
	api.Use(rateLimiter.Handler())

	authGuard := middleware.RequireAuth(deps.TokenManager, deps.TokenStore)

	http.NewUserHandler(deps.UserService, authGuard).Register(api)
	http.NewCompanyHandler(deps.CompanyService, authGuard).Register(api)
	http.NewJobHandler(deps.JobService, authGuard).Register(api)
	http.NewApplicationHandler(deps.ApplicationService, authGuard).Register(api)
	if deps.AuditRepo != nil {
		http.NewAuditHandler(deps.AuditRepo, authGuard).Register(api)
	}

	logger.Info("API server initialized successfully")

	return app, cleanup, nil
}
