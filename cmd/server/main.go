// Package main provides the HTTP entry point for the MediBuddy diagnosis
// server.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/api"
	"github.com/medibuddy-diagnosis-server/internal/clinical"
	"github.com/medibuddy-diagnosis-server/internal/config"
	"github.com/medibuddy-diagnosis-server/internal/database"
	"github.com/medibuddy-diagnosis-server/internal/directory"
	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/inference"
	"github.com/medibuddy-diagnosis-server/internal/service"
	"github.com/medibuddy-diagnosis-server/pkg/llm"
)

func main() {
	// Local development keeps the Gemini key in config/api.env.
	_ = godotenv.Load("config/api.env")

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Generative model chain: raw client, then retry/limit/breaker, then
	// the optional Redis response cache.
	gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Gemini client")
	}
	var generator domain.TextGenerator = llm.NewResilientGenerator(gemini, cfg.Gemini, logger)
	if cfg.Cache.Enabled {
		cached, err := llm.NewCachedGenerator(generator, cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create response cache")
		}
		defer cached.Close()
		generator = cached
	}

	var store domain.ClinicalStore
	var directoryDB *sql.DB

	switch cfg.Database.Driver {
	case "postgres":
		runner, err := database.NewMigrationRunner(database.URL(cfg.Database), cfg.Database.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()

		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		store = clinical.NewPostgresStore(db.Pool, logger)

		directoryDB, err = sql.Open("postgres", configManager.GetDatabaseConnectionString())
		if err != nil {
			logger.WithError(err).Fatal("Failed to open directory connection")
		}
		defer directoryDB.Close()
	default:
		sqliteStore, err := clinical.NewSQLiteStore(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open clinical database")
		}
		store = sqliteStore
		directoryDB = sqliteStore.DB()
	}
	defer store.Close()

	ranker := inference.NewRanker(cfg.Classifier, logger)
	defer ranker.Close()

	providers := directory.New(directoryDB, cfg.Database.Driver, cfg.Pipeline.DoctorLimit, logger)

	extractor := service.NewSymptomExtractorService(generator, logger)
	guesser := service.NewFallbackGuesserService(generator, logger)
	resolver, err := service.NewSpecialtyResolver(store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create specialty resolver")
	}

	pipeline := service.NewPipeline(extractor, ranker, guesser, resolver, store, providers,
		service.PipelineOptions{
			ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
			TopN:                cfg.Pipeline.TopN,
		}, logger)

	logger.WithFields(logrus.Fields{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"driver":        cfg.Database.Driver,
		"legacy_ranker": cfg.Pipeline.LegacyRanker,
		"classifier":    ranker.Loaded(),
	}).Info("Starting MediBuddy diagnosis server")

	server := api.NewServer(cfg, pipeline, providers, logger)
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
