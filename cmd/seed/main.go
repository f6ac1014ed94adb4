// Package main provides the clinical dataset seeding CLI. It reads a JSON
// array of disease entries and upserts them into the configured backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/clinical"
	"github.com/medibuddy-diagnosis-server/internal/config"
	"github.com/medibuddy-diagnosis-server/internal/database"
	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// DiseaseEntry is one row of the seed dataset.
type DiseaseEntry struct {
	Disease        string   `json:"disease"`
	Specialization string   `json:"specialization"`
	Symptoms       []string `json:"symptoms"`
}

func main() {
	dataPath := flag.String("data", "data/diseases.json", "path to the disease dataset JSON file")
	flag.Parse()

	_ = godotenv.Load("config/api.env")

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg := configManager.GetConfig()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})

	entries, err := loadEntries(*dataPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load dataset")
	}

	ctx := context.Background()

	var store domain.ClinicalStore
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
	default:
		sqliteStore, err := clinical.NewSQLiteStore(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open clinical database")
		}
		store = sqliteStore
	}
	defer store.Close()

	seeded := 0
	for _, entry := range entries {
		if err := store.UpsertDiseaseEntry(ctx, entry.Disease, entry.Specialization, entry.Symptoms); err != nil {
			logger.WithError(err).WithField("disease", entry.Disease).Error("Upsert failed")
			continue
		}
		seeded++
	}

	logger.WithFields(logrus.Fields{
		"total":  len(entries),
		"seeded": seeded,
	}).Info("Seeding completed")

	if seeded < len(entries) {
		os.Exit(1)
	}
}

func loadEntries(path string) ([]DiseaseEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var entries []DiseaseEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	return entries, nil
}
