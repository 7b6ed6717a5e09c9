package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/deepstock/deepstock-backend/internal/api/response"
)

// APIKeyMiddleware protects maintenance endpoints with the INTERNAL_API_KEY
// environment variable. Requests must send the key in the X-API-Key header.
// When no key is configured the protected endpoints are disabled entirely.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		configured := os.Getenv("INTERNAL_API_KEY")
		if configured == "" {
			response.RespondError(w, http.StatusServiceUnavailable, "endpoint disabled", "No API key configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
