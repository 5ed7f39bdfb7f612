package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/interview-analyzer/internal/services"
)

const HeaderRequestID = "X-Request-ID"

// ErrorHandler replies to every failed request with a plain-text body.
// Fiber's own errors keep their status; everything else goes through the
// analysis error taxonomy.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			code    int
			message string
			kind    services.ErrorKind
		)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
			kind = "FiberError"
		} else {
			ae := services.ToAnalysisError(err)
			code = ae.Status
			message = ae.Message
			kind = ae.Kind
		}

		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("kind", string(kind)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", string(c.Response().Header.Peek(HeaderRequestID))),
			zap.Error(err),
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("❌ Request failed", fields...)
		} else {
			log.Warn("⚠️ Request rejected", fields...)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(message)
	}
}
