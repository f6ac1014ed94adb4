// Package main provides the standalone MCP entry point. It needs no
// external database server: the clinical store lives in a local SQLite
// file under the data directory.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/clinical"
	"github.com/medibuddy-diagnosis-server/internal/config"
	"github.com/medibuddy-diagnosis-server/internal/directory"
	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/inference"
	"github.com/medibuddy-diagnosis-server/internal/mcp"
	"github.com/medibuddy-diagnosis-server/internal/service"
	"github.com/medibuddy-diagnosis-server/pkg/llm"
)

func main() {
	_ = godotenv.Load("config/api.env")

	cfg := config.LoadLiteConfig()
	logger := newLogger(cfg)

	log.Printf("Starting MediBuddy MCP Server")
	log.Printf("Data directory: %s", cfg.DataDir)

	if err := cfg.EnsureDataDir(); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	geminiCfg := domain.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.CallTimeout,
	}
	gemini, err := llm.NewGeminiClient(ctx, geminiCfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Gemini client")
	}
	generator := llm.NewResilientGenerator(gemini, geminiCfg, logger)

	store, err := clinical.NewSQLiteStore(cfg.ClinicalDBPath(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open clinical database")
	}
	defer store.Close()

	ranker := inference.NewRanker(domain.ClassifierConfig{
		ModelPath:   cfg.ModelPath,
		EncoderPath: cfg.EncoderPath,
	}, logger)
	defer ranker.Close()

	providers := directory.New(store.DB(), "sqlite", cfg.DoctorLimit, logger)

	extractor := service.NewSymptomExtractorService(generator, logger)
	guesser := service.NewFallbackGuesserService(generator, logger)
	resolver, err := service.NewSpecialtyResolver(store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create specialty resolver")
	}

	pipeline := service.NewPipeline(extractor, ranker, guesser, resolver, store, providers,
		service.PipelineOptions{
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			TopN:                cfg.TopN,
		}, logger)

	server, err := mcp.NewServer(pipeline, extractor, providers, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("MCP server failed")
	}

	log.Println("MediBuddy MCP Server stopped")
}

func newLogger(cfg *config.LiteConfig) *logrus.Logger {
	logger := logrus.New()
	// stdout carries the MCP protocol, logs go to stderr.
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
