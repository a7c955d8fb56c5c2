// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	Environment   string
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	GeminiTimeout time.Duration
	// Empty disables bearer auth on the API.
	JWTSecretKey       string
	RateLimitPerMinute int
	MaxNarrativeBytes  int64
	LogLevel           string
	CORSAllowedOrigins []string
	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string
}

const defaultMaxNarrativeBytes = 16384

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	LoadEnvFile()
	return FromEnv(os.Getenv("ENV"))
}

// LoadEnvFile loads .env into the process environment outside production.
// Variables already set are not overridden.
func LoadEnvFile() {
	if isProduction(os.Getenv("ENV")) {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; continuing with environment variables")
	}
}

// MaxNarrativeBytes returns MAX_NARRATIVE_BYTES without requiring the rest
// of the configuration, falling back to the default when unset or invalid.
func MaxNarrativeBytes() int64 {
	n := int64(getEnvAsInt("MAX_NARRATIVE_BYTES", defaultMaxNarrativeBytes))
	if n <= 0 {
		return defaultMaxNarrativeBytes
	}
	return n
}

// FromEnv builds the config from the current process environment only.
func FromEnv(env string) (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        env,
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:      time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxNarrativeBytes:  int64(getEnvAsInt("MAX_NARRATIVE_BYTES", defaultMaxNarrativeBytes)),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsList("TRUSTED_PROXIES", nil),
	}

	missing := []string{}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if isProduction(env) && cfg.JWTSecretKey == "" {
		log.Println("Warning: JWT_SECRET_KEY is not set; the API is unauthenticated")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.GeminiTimeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}
	if cfg.MaxNarrativeBytes <= 0 {
		return nil, fmt.Errorf("MAX_NARRATIVE_BYTES must be positive")
	}
	return cfg, nil
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsList splits a comma-separated env var, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
