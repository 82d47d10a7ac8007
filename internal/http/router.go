package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/go-blog-auth/internal/auth"
	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/httputil"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
)

// NewRouter creates and configures the HTTP router.
// metricsHandler is mounted at /metrics when non-nil.
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	metricsHandler http.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true, // session cookie
			MaxAge:           300,  // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		logger.Info("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(NoStore)
		r.Get("/", authHandler.Session)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(NoStore)

		// Public: sign-up and password reset
		r.Post("/sign-up", authHandler.RequestSignUp)
		r.Post("/", authHandler.CreateUser)
		r.Post("/password-reset", authHandler.RequestPasswordReset)
		r.Put("/password", authHandler.ResetPassword)

		// Require a session
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireSession)
			r.Get("/", authHandler.ListUsers)
			r.Get("/{id}", authHandler.GetUser)
			r.Patch("/{id}", authHandler.UpdateUser)
			r.Delete("/{id}", authHandler.DeleteUser)
		})
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
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
