package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/interview-analyzer/internal/config"
	"alfredoptarigan/interview-analyzer/internal/handlers"
)

// New builds the Fiber app with middleware and routes.
func New(cfg *config.Config, log *zap.Logger, analyzeHandler *handlers.AnalyzeHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "AI Interview Analyzer API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout(),
		BodyLimit:    cfg.Server.MaxBodySize,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     zap.NewStdLog(log).Writer(),
	}))

	api := app.Group("/api")
	api.Get("/health", handlers.HandleHealth)

	// CORS is scoped to the analyze route only.
	analyze := api.Group("/analyze", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	analyze.Post("", analyzeHandler.HandleAnalyze)

	app.Get("/", handlers.HandleRoot)

	return app
}
