package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL",
		"GEMINI_TIMEOUT_SECONDS", "JWT_SECRET_KEY", "RATE_LIMIT_PER_MINUTE",
		"MAX_NARRATIVE_BYTES", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "TRUSTED_PROXIES",
	} {
		// Setenv registers the restore; Unsetenv makes the key absent.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := FromEnv("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.EqualValues(t, 16384, cfg.MaxNarrativeBytes)
	assert.Empty(t, cfg.JWTSecretKey)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "15")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("MAX_NARRATIVE_BYTES", "1024")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := FromEnv("production")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
	assert.EqualValues(t, 1024, cfg.MaxNarrativeBytes)
	assert.Equal(t, "jwt", cfg.JWTSecretKey)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
}

func TestFromEnvMissingKey(t *testing.T) {
	clearEnv(t)
	_, err := FromEnv("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFromEnvBadInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")

	cfg, err := FromEnv("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestFromEnvRejectsNonPositiveTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "0")

	_, err := FromEnv("")
	require.Error(t, err)
}

func TestMaxNarrativeBytes(t *testing.T) {
	clearEnv(t)
	assert.EqualValues(t, 16384, MaxNarrativeBytes())

	t.Setenv("MAX_NARRATIVE_BYTES", "2048")
	assert.EqualValues(t, 2048, MaxNarrativeBytes())

	t.Setenv("MAX_NARRATIVE_BYTES", "-5")
	assert.EqualValues(t, 16384, MaxNarrativeBytes())

	// No API key needed.
	t.Setenv("MAX_NARRATIVE_BYTES", "512")
	_, err := FromEnv("")
	require.Error(t, err)
	assert.EqualValues(t, 512, MaxNarrativeBytes())
}
