package server

import (
	"context"
	"log"

	"github.com/Gatu-1548/plagio-ia/internal/bootstrap"
	"github.com/Gatu-1548/plagio-ia/internal/config"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"

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
	// Uploads are PDFs; keep some headroom over the gateway's own limit.
	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, " + serverutils.TabHeader,
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(container.Metrics.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "up"}))
	})
	app.Get("/metrics", container.Metrics.Handler())

	// Routes
	registerRoutes(app, container)

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
	log.Printf("[INFO] Console is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api", serverutils.WorkspaceMiddleware(c.Workspaces))
	requireSession := serverutils.RequireSession

	c.AuthController.RegisterRoutes(api)
	c.OrganizationController.RegisterRoutes(api, requireSession)

	c.ProjectController.RegisterRoutes(api, requireSession)
	c.DocumentController.RegisterRoutes(api, requireSession)

	c.UserController.RegisterRoutes(api, requireSession)
	c.PlanController.RegisterRoutes(api, requireSession)
	c.BIController.RegisterRoutes(api, requireSession)

	c.StatusHandler.RegisterRoutes(api)
}
