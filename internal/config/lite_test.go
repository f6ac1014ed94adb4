package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, 0.30, cfg.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, 10, cfg.DoctorLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 0.30, cfg.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.TopN)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("MEDIBUDDY_DATA_DIR", "/tmp/test-medibuddy")
	os.Setenv("GEMINI_API_KEY", "test-key")
	os.Setenv("MEDIBUDDY_GEMINI_MODEL", "gemini-2.5-pro")
	os.Setenv("MEDIBUDDY_CALL_TIMEOUT", "10s")
	os.Setenv("MEDIBUDDY_CONFIDENCE_THRESHOLD", "0.5")
	os.Setenv("MEDIBUDDY_TOP_N", "5")
	os.Setenv("MEDIBUDDY_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-medibuddy", cfg.DataDir)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 10*time.Second, cfg.CallTimeout)
	assert.Equal(t, 0.5, cfg.ConfidenceThreshold)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_RejectsInvalidOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("MEDIBUDDY_CONFIDENCE_THRESHOLD", "1.7")
	os.Setenv("MEDIBUDDY_TOP_N", "-2")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 0.30, cfg.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.TopN)
}

func TestLiteConfig_ClinicalDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.medibuddy"}

	path := cfg.ClinicalDBPath()

	assert.Equal(t, "/home/user/.medibuddy/clinical.db", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "medibuddy")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"MEDIBUDDY_DATA_DIR",
		"GEMINI_API_KEY",
		"MEDIBUDDY_GEMINI_MODEL",
		"MEDIBUDDY_CALL_TIMEOUT",
		"MEDIBUDDY_MODEL_PATH",
		"MEDIBUDDY_ENCODER_PATH",
		"MEDIBUDDY_CONFIDENCE_THRESHOLD",
		"MEDIBUDDY_TOP_N",
		"MEDIBUDDY_DOCTOR_LIMIT",
		"MEDIBUDDY_LOG_LEVEL",
		"MEDIBUDDY_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
