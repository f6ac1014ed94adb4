// Package config provides configuration management for the diagnosis
// server. This file contains the lightweight configuration used by the
// standalone MCP binary.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone MCP operation.
// It needs no config file and no external database server: the clinical
// store runs on a local SQLite file.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// Generative model settings
	GeminiAPIKey string        // Required for extraction and fallback
	GeminiModel  string        // Model identifier
	CallTimeout  time.Duration // Per-call deadline

	// Classifier artifacts
	ModelPath   string // ONNX classifier file
	EncoderPath string // Encoder manifest file

	// Pipeline settings
	ConfidenceThreshold float64
	TopN                int
	DoctorLimit         int

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".medibuddy")

	return &LiteConfig{
		DataDir:             dataDir,
		GeminiModel:         "gemini-2.5-flash-lite",
		CallTimeout:         30 * time.Second,
		ModelPath:           "models/disease_classifier.onnx",
		EncoderPath:         "models/encoder.json",
		ConfidenceThreshold: 0.30,
		TopN:                3,
		DoctorLimit:         10,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("MEDIBUDDY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("MEDIBUDDY_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("MEDIBUDDY_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CallTimeout = d
		}
	}

	if v := os.Getenv("MEDIBUDDY_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("MEDIBUDDY_ENCODER_PATH"); v != "" {
		cfg.EncoderPath = v
	}

	if v := os.Getenv("MEDIBUDDY_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("MEDIBUDDY_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopN = n
		}
	}
	if v := os.Getenv("MEDIBUDDY_DOCTOR_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DoctorLimit = n
		}
	}

	if v := os.Getenv("MEDIBUDDY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEDIBUDDY_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// ClinicalDBPath returns the path to the local clinical SQLite database.
func (c *LiteConfig) ClinicalDBPath() string {
	return filepath.Join(c.DataDir, "clinical.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
