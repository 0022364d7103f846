package server

import (
	"log"

	"legalai-be/internal/bootstrap"
	"legalai-be/internal/config"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/routes"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
	router    *serverutils.GuardedRouter
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	router := serverutils.NewGuardedRouter(
		app.Group("/api"),
		"/api",
		routes.Table(),
		container.Sessions,
		container.Roles,
		container.Logger,
	)
	registerRoutes(router, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
		router:    router,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Registered lists the API routes actually mounted.
func (s *Server) Registered() []string {
	return s.router.Registered()
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(api *serverutils.GuardedRouter, c *bootstrap.Container) {
	c.RoleController.RegisterRoutes(api)
	c.NavigationController.RegisterRoutes(api)

	c.DraftController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.SummaryController.RegisterRoutes(api)
	c.ShareController.RegisterRoutes(api)

	c.StreamHandler.RegisterRoutes(api)
}
