// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iyunix/mediscribe/internal/ratelimit"
)

// Allower is satisfied by *ratelimit.MemoryRateLimiter.
type Allower interface {
	Allow(identifier string) (bool, *ratelimit.RateLimitInfo)
}

// RateLimitMiddleware limits requests per client IP. name scopes the
// identifier so separate routes can share one limiter. A nil resolver keys
// on the peer address.
func RateLimitMiddleware(limiter Allower, resolver *ratelimit.IPResolver, name string, limit int, logger Logger) func(http.Handler) http.Handler {
	logger = orNoop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := resolver.ClientIP(r)
			allowed, info := limiter.Allow(name + ":" + clientIP)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !allowed {
				logger.Warn("rate limited",
					"route", name,
					"client_ip", clientIP,
					"retry_after_s", int(info.RetryAfter.Seconds()),
					"request_id", RequestIDFromContext(r.Context()),
				)

				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many requests. Please try again later.",
					"retryAfter": int(info.RetryAfter.Seconds()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
