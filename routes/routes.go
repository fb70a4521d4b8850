package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/paymybuddy/api/app"
	"github.com/paymybuddy/api/config"
	"github.com/paymybuddy/api/handlers"
	"github.com/paymybuddy/api/internal/observability"
	"github.com/paymybuddy/api/utils"
)

const (
	defaultRequestTimeout = 60 * time.Second

	// userRole is the authority every issued token carries
	userRole = "ROLE_USER"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	timeout := defaultRequestTimeout
	origins := config.DefaultCORSOrigins
	if deps.Config != nil {
		if deps.Config.Server.RequestTimeout > 0 {
			timeout = deps.Config.Server.RequestTimeout
		}
		if len(deps.Config.CORS.AllowedOrigins) > 0 {
			origins = deps.Config.CORS.AllowedOrigins
		}
	}

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Bearer token, then the route table
	r.Use(deps.AuthMiddleware.Authenticate)
	r.Use(deps.AccessPolicy.Enforce)

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", handlers.AuthLoginHandler(deps))
		r.Post("/register", deps.UserHandler.HandleRegister)
	})
	// Registration alias kept for existing clients
	r.Post("/user", deps.UserHandler.HandleRegister)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireRole(userRole))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", deps.UserHandler.HandleList)
			r.Get("/me", deps.UserHandler.HandleMe)
			r.Get("/{id}", deps.UserHandler.HandleGet)
			r.Put("/{id}", deps.UserHandler.HandleUpdate)
			r.Delete("/{id}", deps.UserHandler.HandleDelete)
			r.Get("/{id}/connections", deps.UserHandler.HandleListConnections)
			r.Post("/{id}/connections", deps.UserHandler.HandleAddConnection)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", deps.TransactionHandler.HandleList)
			r.Post("/", deps.TransactionHandler.HandleCreate)
			r.Get("/{id}", deps.TransactionHandler.HandleGet)
			r.Put("/{id}", deps.TransactionHandler.HandleUpdate)
			r.Delete("/{id}", deps.TransactionHandler.HandleDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
