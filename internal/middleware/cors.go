package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the configured frontend origin with credentials. An empty
// origin allows any origin.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origins := []string{"*"}
	if frontendURL != "" {
		origins = []string{frontendURL}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Device-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
