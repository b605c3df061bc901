package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/workboard/go-job-board/internal/api/auth"
	"github.com/workboard/go-job-board/internal/api/jobs"
	"github.com/workboard/go-job-board/internal/types"
)

// Config contains the handlers and middleware needed for route wiring.
type Config struct {
	AuthHandler            *auth.AuthHandler
	JobHandler             *jobs.JobHandler
	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireRoleMiddleware  func(...types.Role) func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, request ID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public credential endpoints
		r.Group(func(r chi.Router) {
			r.Post("/auth/signup", cfg.AuthHandler.Signup)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Everything below requires a verified bearer token
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/auth/protected", cfg.AuthHandler.Protected)

			r.Route("/jobs", func(r chi.Router) {
				// Creating postings is limited to recruiters and admins;
				// reads and owner-scoped writes only need authentication.
				r.With(cfg.RequireRoleMiddleware(types.RoleRecruiter, types.RoleAdmin)).
					Post("/", cfg.JobHandler.Create)
				r.Get("/", cfg.JobHandler.List)
				r.Get("/{id}", cfg.JobHandler.Get)
				r.Put("/{id}", cfg.JobHandler.Update)
				r.Delete("/{id}", cfg.JobHandler.Delete)
			})
		})
	})

	return r
}
