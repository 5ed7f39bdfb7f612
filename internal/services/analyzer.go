package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/interview-analyzer/internal/models"
	"alfredoptarigan/interview-analyzer/internal/repositories"
)

type AnalyzerService interface {
	Analyze(ctx context.Context, requestID uuid.UUID, apiKey string, req *models.UploadRequest) (json.RawMessage, error)
}

type AnalyzerOptions struct {
	Model        string
	MaxFileSize  int64
	Timeout      time.Duration
	StrictSchema bool
}

type analyzerService struct {
	encoder       FileEncoder
	generators    GeneratorFactory
	logRepo       repositories.AnalysisLogRepository
	promptBuilder *PromptBuilder
	log           *zap.Logger
	opts          AnalyzerOptions
}

func NewAnalyzerService(
	encoder FileEncoder,
	generators GeneratorFactory,
	logRepo repositories.AnalysisLogRepository,
	log *zap.Logger,
	opts AnalyzerOptions,
) AnalyzerService {
	return &analyzerService{
		encoder:       encoder,
		generators:    generators,
		logRepo:       logRepo,
		promptBuilder: NewPromptBuilder(),
		log:           log,
		opts:          opts,
	}
}

// Analyze validates the upload, sends it to the model and returns the
// salvaged JSON. Every failure is an *AnalysisError.
func (a *analyzerService) Analyze(ctx context.Context, requestID uuid.UUID, apiKey string, req *models.UploadRequest) (json.RawMessage, error) {
	if apiKey == "" {
		return nil, NewConfigurationError(MsgMissingAPIKey)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, NewValidationError(MsgUsernameRequired)
	}

	if len(req.Files) == 0 {
		return nil, NewValidationError(MsgNoFilesUploaded)
	}

	for _, f := range req.Files {
		if a.opts.MaxFileSize > 0 && f.Size > a.opts.MaxFileSize {
			return nil, NewPayloadTooLargeError(f.Filename, a.opts.MaxFileSize)
		}
	}

	log := a.log.With(zap.String("request_id", requestID.String()), zap.String("username", username))
	start := time.Now()

	if err := a.logRepo.Create(&models.AnalysisLog{
		ID:         requestID,
		Username:   username,
		FileCount:  len(req.Files),
		TotalBytes: req.TotalBytes(),
		Model:      a.opts.Model,
		Status:     models.StatusProcessing,
		CreatedAt:  start,
		UpdatedAt:  start,
	}); err != nil {
		log.Warn("⚠️ Failed to record analysis start", zap.Error(err))
	}

	result, err := a.analyze(ctx, log, apiKey, req)

	elapsed := time.Since(start)
	if err != nil {
		if repoErr := a.logRepo.MarkFailed(requestID, elapsed, err.Error()); repoErr != nil {
			log.Warn("⚠️ Failed to record analysis failure", zap.Error(repoErr))
		}
		return nil, err
	}

	if repoErr := a.logRepo.MarkCompleted(requestID, elapsed); repoErr != nil {
		log.Warn("⚠️ Failed to record analysis completion", zap.Error(repoErr))
	}

	log.Info("✅ Analysis completed", zap.Duration("elapsed", elapsed))
	return result, nil
}

func (a *analyzerService) analyze(ctx context.Context, log *zap.Logger, apiKey string, req *models.UploadRequest) (json.RawMessage, error) {
	for _, f := range req.Files {
		log.Info("📁 Processing file", zap.String("name", f.Filename), zap.Int64("size", f.Size))
	}

	parts, err := a.encoder.EncodeAll(ctx, req.Files)
	if err != nil {
		return nil, NewUnknownError(err)
	}

	genReq := a.promptBuilder.BuildGenerationRequest(parts)

	generator, err := a.generators.NewGenerator(ctx, apiKey)
	if err != nil {
		return nil, NewUnknownError(err)
	}

	callCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	log.Info("🤖 Requesting analysis from model", zap.String("model", a.opts.Model), zap.Int("parts", len(genReq.Parts)))
	text, err := generator.GenerateContent(callCtx, genReq)
	if err != nil {
		return nil, NewUnknownError(err)
	}
	log.Info("📊 Model response received", zap.Int("chars", len(text)))

	result, err := SalvageJSON(text)
	if err != nil {
		log.Warn("❌ Could not extract JSON from model response", zap.Error(err), zap.String("response", preview(text, 500)))
		return nil, err
	}

	if a.opts.StrictSchema {
		if _, err := models.DecodeAnalysis(result); err != nil {
			return nil, NewUpstreamFormatError(MsgSchemaMismatch, err)
		}
	}

	return result, nil
}

// preview cuts s to at most n bytes without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
