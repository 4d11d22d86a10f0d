package server

import (
	"docanalyze/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	app *fiber.App
	cfg *config.ServerConfig
}

func New(cfg *config.ServerConfig, sessions SessionService, store HistoryService) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(cors.New())
	app.Use(ErrorHandlerMiddleware())

	api := app.Group("/api")
	NewSessionHandler(sessions).RegisterRoutes(api)
	NewHistoryHandler(store).RegisterRoutes(api)

	return &Server{app: app, cfg: cfg}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("server listening")
	return s.app.Listen(s.cfg.Addr)
}
