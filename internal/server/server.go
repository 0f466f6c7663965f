package server

import (
	"log"

	"ai-studio-be/internal/bootstrap"
	"ai-studio-be/internal/config"
	"ai-studio-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // reference images arrive inline
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Retry-After",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	// Public
	c.HealthController.RegisterRoutes(api)

	protected := api.Group("", serverutils.JwtMiddleware(cfg.Auth.JWTSecret, c.AccountService))
	c.QuotaController.RegisterRoutes(protected)
	c.UsageController.RegisterRoutes(protected)
	c.CostController.RegisterRoutes(protected)
	c.GenerationController.RegisterRoutes(protected)
	c.AdminController.RegisterRoutes(protected)
}
