package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/vigil/internal/auth"
	"github.com/BradenHooton/vigil/internal/handlers"
	"github.com/BradenHooton/vigil/internal/middleware"
)

// RegisterRoutes registers all application routes under /v1. Every endpoint
// requires a service token; the admin surface additionally requires the
// admin role.
func RegisterRoutes(
	router chi.Router,
	tokenManager *auth.TokenManager,
	credentialsHandler *handlers.CredentialsHandler,
	loginsHandler *handlers.LoginsHandler,
	usersHandler *handlers.UsersHandler,
	adminHandler *handlers.AdminHandler,
) {
	router.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		// Consumer surface: the auth gateway and signup flows
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleConsumer))

			r.With(middleware.RateLimitByIP(middleware.DefaultValidationRateLimit())).
				Group(credentialsHandler.RegisterRoutes)

			r.With(middleware.RateLimitByIP(middleware.DefaultIngestRateLimit())).
				Group(loginsHandler.RegisterRoutes)

			usersHandler.RegisterRoutes(r)
		})

		// Admin surface: the trust & safety console
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			adminHandler.RegisterRoutes(r)
		})
	})
}
