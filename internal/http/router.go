package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/favorite-movies-api/internal/auth"
	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/httputil"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/movie"
)

// HealthMessage is the body of GET /health.
const HealthMessage = "api is running"

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Movies         *movie.Handler
	// Uploads serves GET /uploads/{name}. Nil leaves the route out.
	Uploads http.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5, "application/json", "text/html", "text/css", "application/javascript"))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	if h.Uploads != nil {
		r.Method(http.MethodGet, "/uploads/{name}", h.Uploads)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/google", h.Auth.GoogleLogin)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)
		r.With(h.AuthMiddleware.RequireAuth).Get("/profile", h.Auth.Profile)
	})

	r.Route("/movies", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.Movies.RequireAuthForReads {
				r.Use(h.AuthMiddleware.RequireAuth)
			}
			r.Get("/", h.Movies.List)
			r.Get("/{id}", h.Movies.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware.RequireAuth)
			r.Post("/", h.Movies.Create)
			r.Patch("/{id}", h.Movies.Update)
			r.Delete("/{id}", h.Movies.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "route not found", httputil.CodeNotFound, http.StatusNotFound)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": HealthMessage}, http.StatusOK)
}
