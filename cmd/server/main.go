// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iyunix/mediscribe/internal/config"
	"github.com/iyunix/mediscribe/internal/handlers"
	"github.com/iyunix/mediscribe/internal/ratelimit"
	"github.com/iyunix/mediscribe/internal/services"
	"github.com/iyunix/mediscribe/internal/services/gemini"
	"github.com/iyunix/mediscribe/internal/services/soapnote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	production := strings.EqualFold(cfg.Environment, "production")
	logger := services.NewProductionLogger("mediscribe", os.Stdout, services.ParseLogLevel(cfg.LogLevel), production)

	// --- Services ---
	geminiConfig := &gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}
	geminiClient, err := gemini.NewClient(geminiConfig, logger.With("component", "gemini"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Gemini client: %v", err)
	}

	noteConfig := soapnote.DefaultConfig()
	// Leave headroom over the HTTP timeout so the client error surfaces first.
	noteConfig.GenerationTimeout = cfg.GeminiTimeout + 5*time.Second
	noteService, err := soapnote.NewService(noteConfig, geminiClient, logger.With("component", "soapnote"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SOAP note service: %v", err)
	}

	// --- Handlers ---
	soapNoteHandler, err := handlers.NewSoapNoteHandler(noteService, logger.With("component", "handler"), cfg.MaxNarrativeBytes)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SOAP note handler: %v", err)
	}
	clientLogHandler := handlers.NewClientLogHandler(logger.With("component", "client"))

	ipResolver, err := ratelimit.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("FATAL: Invalid TRUSTED_PROXIES: %v", err)
	}
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.GenerationConfig(cfg.RateLimitPerMinute))
	defer limiter.Close()

	// --- Router Setup ---
	r := newRouter(routerDeps{
		Logger:         logger,
		SoapNote:       soapNoteHandler,
		ClientLog:      clientLogHandler,
		Limiter:        limiter,
		IPResolver:     ipResolver,
		RateLimit:      cfg.RateLimitPerMinute,
		JWTSecretKey:   cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// A request may wait on one full model call.
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
	}

	logger.Info("server starting",
		"port", port,
		"model", cfg.GeminiModel,
		"auth_enabled", cfg.JWTSecretKey != "",
		"rate_limit_per_minute", cfg.RateLimitPerMinute,
	)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
