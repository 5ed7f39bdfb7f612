package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/interview-analyzer/internal/config"
	"alfredoptarigan/interview-analyzer/internal/handlers"
	"alfredoptarigan/interview-analyzer/internal/logger"
	"alfredoptarigan/interview-analyzer/internal/repositories"
	"alfredoptarigan/interview-analyzer/internal/server"
	"alfredoptarigan/interview-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.NewLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	zl.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	if config.GeminiAPIKey() == "" {
		zl.Warn("⚠️ GEMINI_API_KEY is not set; analysis requests will fail until it is")
	}

	// Audit log is optional
	logRepo := repositories.NewNoopAnalysisLogRepository()
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, zl)
		if err != nil {
			zl.Fatal("❌ Failed to initialize database", zap.Error(err))
		}
		logRepo = repositories.NewAnalysisLogRepository(db)
		zl.Info("✅ Analysis audit log enabled")
	}

	// Initialize services
	encoder := services.NewFileEncoder(
		cfg.Upload.ChunkThreshold,
		cfg.Upload.ChunkSize,
		cfg.Upload.EncodeConcurrency,
	)
	generators := services.NewGeminiGeneratorFactory(cfg.Gemini.Model, cfg.Gemini.ClientCacheTTL)

	analyzer := services.NewAnalyzerService(
		encoder,
		generators,
		logRepo,
		zl,
		services.AnalyzerOptions{
			Model:        cfg.Gemini.Model,
			MaxFileSize:  cfg.Upload.MaxFileSize,
			Timeout:      cfg.Gemini.Timeout,
			StrictSchema: cfg.Analysis.StrictSchema,
		},
	)
	zl.Info("✅ Services initialized successfully", zap.String("model", cfg.Gemini.Model))

	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, config.GeminiAPIKey)

	app := server.New(cfg, zl, analyzeHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			zl.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
