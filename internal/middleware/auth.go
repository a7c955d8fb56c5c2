package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/mediscribe/internal/auth"
)

// BearerAuth requires an HS256 token in the Authorization header and puts
// its subject on the request context.
func BearerAuth(secretKey []byte, logger Logger) func(http.Handler) http.Handler {
	logger = orNoop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn("missing bearer token", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()))
				unauthorized(w)
				return
			}

			subject, err := auth.ValidateToken(token, secretKey)
			if err != nil {
				logger.Warn("invalid bearer token", "path", r.URL.Path, "error", err, "request_id", RequestIDFromContext(r.Context()))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
