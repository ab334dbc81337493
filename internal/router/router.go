// Package router sets up all HTTP routes and middleware chains for the
// blog API. It organizes routes into an open group for credentials and an
// authenticated group for everything else.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. authLimiter throttles /register and /login
// and may be nil.
func New(
	tokens middleware.TokenVerifier,
	users middleware.UserFinder,
	authLimiter *middleware.RateLimiter,
	auth *handlers.Auth,
	posts *handlers.Posts,
	comments *handlers.Comments,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request. RequestID runs first so
	// the logger and recoverer can report it.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(tokens, users))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Credential endpoints, rate-limited per client IP.
	r.Group(func(r chi.Router) {
		if authLimiter != nil {
			r.Use(authLimiter.Middleware)
		}
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
	})

	// Everything else requires a valid bearer token, reads included.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)

		r.Post("/logout", auth.Logout)
		r.Get("/me", auth.Me)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", posts.Index)
			r.Post("/", posts.Store)
			r.Get("/{id}", posts.Show)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Destroy)
			r.Post("/{id}/comments", comments.Store)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested resource was not found."}`))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"Method Not Allowed"}`))
}
