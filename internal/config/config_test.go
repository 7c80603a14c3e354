package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "AI_RATE_RPM", "ARK_TIMEOUT",
		"SPEECH_APP_ID", "SPEECH_ACCESS_TOKEN", "SPEECH_API_KEY", "RETRIEVAL_K", "DATABASE_URL", "LOG_LEVEL",
		"MODEL_DIR", "RULES_FILE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 30, cfg.AI.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, 64, cfg.Speech.CacheSize)
	assert.Equal(t, 3, cfg.Advisor.RetrievalK)
	assert.Equal(t, "models", cfg.Advisor.ModelDir)
	assert.Empty(t, cfg.Advisor.RulesFile)
	assert.Empty(t, cfg.Storage.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-123")
	t.Setenv("AI_RATE_RPM", "-5")
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_API_KEY", "token")
	t.Setenv("RETRIEVAL_K", "5")
	t.Setenv("DATABASE_URL", "postgres://localhost/advisor")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	assert.Zero(t, cfg.AI.RequestsPerMinute)
	assert.True(t, cfg.Speech.Enabled)
	assert.Equal(t, "token", cfg.Speech.AccessToken)
	assert.Equal(t, 5, cfg.Advisor.RetrievalK)
	assert.Equal(t, "postgres://localhost/advisor", cfg.Storage.DatabaseURL)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "80 80"},
		{"ARK_TEMPERATURE", "warm"},
		{"AI_RATE_RPM", "fast"},
		{"SPEECH_TTS_SPEED", "quick"},
		{"RETRIEVAL_K", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
