package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManagerEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("MEDIBUDDY_GEMINI_API_KEY")
}

func TestNewManager_Defaults(t *testing.T) {
	resetManagerEnv(t)
	defer resetManagerEnv(t)

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Gemini.Model)
	assert.Equal(t, 0.30, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.Pipeline.TopN)
	assert.False(t, cfg.Pipeline.LegacyRanker)
}

func TestNewManager_GeminiKeyFromEnvironment(t *testing.T) {
	resetManagerEnv(t)
	defer resetManagerEnv(t)

	os.Setenv("GEMINI_API_KEY", "plain-key")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "plain-key", m.GetGeminiConfig().APIKey)
	assert.NoError(t, m.Validate())
}

func TestNewManager_PrefixedGeminiKeyWins(t *testing.T) {
	resetManagerEnv(t)
	defer resetManagerEnv(t)

	os.Setenv("GEMINI_API_KEY", "plain-key")
	os.Setenv("MEDIBUDDY_GEMINI_API_KEY", "prefixed-key")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "prefixed-key", m.GetGeminiConfig().APIKey)
}

func TestManagerValidate_MissingAPIKey(t *testing.T) {
	resetManagerEnv(t)
	defer resetManagerEnv(t)

	m, err := NewManager()
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API key is required")
}
