package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"alfredoptarigan/interview-analyzer/internal/models"
	"alfredoptarigan/interview-analyzer/internal/services"
)

type AnalyzeHandler struct {
	analyzer services.AnalyzerService
	apiKey   func() string
}

// NewAnalyzeHandler wires the analyzer. apiKey is called on every request.
func NewAnalyzeHandler(analyzer services.AnalyzerService, apiKey func() string) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		apiKey:   apiKey,
	}
}

// HandleAnalyze handles POST /api/analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	apiKey := h.apiKey()
	if apiKey == "" {
		return services.NewConfigurationError(services.MsgMissingAPIKey)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return services.NewUnknownError(errors.Wrap(err, "failed to parse multipart form"))
	}

	req := &models.UploadRequest{
		Files: form.File["files"],
	}
	if values := form.Value["username"]; len(values) > 0 {
		req.Username = values[0]
	}

	requestID := uuid.New()
	c.Set(HeaderRequestID, requestID.String())

	result, err := h.analyzer.Analyze(c.UserContext(), requestID, apiKey, req)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(result)
}
