package middleware

import (
	"net/http"

	"areasense/internal/config"

	"github.com/go-chi/cors"
)

// CORS lets browser clients on the configured origins call the API. Only
// GET and POST are routed, so nothing else is allowed through preflight.
func CORS(cfg config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
}
