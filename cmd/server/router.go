// File: cmd/server/router.go
package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/mediscribe/internal/handlers"
	"github.com/iyunix/mediscribe/internal/middleware"
	"github.com/iyunix/mediscribe/internal/ratelimit"
	"github.com/iyunix/mediscribe/internal/services"
)

// routerDeps collects what newRouter wires together.
type routerDeps struct {
	Logger         services.Logger
	SoapNote       *handlers.SoapNoteHandler
	ClientLog      *handlers.ClientLogHandler
	Limiter        *ratelimit.MemoryRateLimiter
	IPResolver     *ratelimit.IPResolver
	RateLimit      int
	JWTSecretKey   string
	AllowedOrigins []string
}

func newRouter(deps routerDeps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(middleware.RecoverPanic(deps.Logger))
	r.Use(middleware.LoggingMiddleware(deps.Logger))

	// --- Public Routes ---
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", deps.ClientLog.LogFrontendEvent).Methods(http.MethodPost)

	// --- Note API ---
	api := r.PathPrefix("/api/SoapNote").Subrouter()
	if deps.JWTSecretKey != "" {
		api.Use(middleware.BearerAuth([]byte(deps.JWTSecretKey), deps.Logger))
	}
	api.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.IPResolver, "generate", deps.RateLimit, deps.Logger))
	api.HandleFunc("/generateSOAPNote", deps.SoapNote.GenerateSOAPNote).Methods(http.MethodPost, http.MethodOptions)

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
	})

	return r
}
