package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "AI Interview Analyzer API",
		"version": "1.0.0",
		"endpoints": []string{
			"POST /api/analyze",
			"GET /api/health",
		},
	})
}
