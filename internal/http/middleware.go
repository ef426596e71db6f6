package http

import (
	"net/http"
	"strings"
)

// SecurityHeaders adds security-related headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		switch {
		case strings.HasPrefix(r.URL.Path, "/swagger/"):
			// Swagger UI needs scripts, styles, and images to render
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		case strings.HasPrefix(r.URL.Path, "/uploads/"):
			// posters are embedded by the frontend, which lives on another origin
			w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
			w.Header().Set("Content-Security-Policy", "default-src 'none'")
		default:
			w.Header().Set("Content-Security-Policy", "default-src 'none'")
		}

		next.ServeHTTP(w, r)
	})
}
