package routes

import (
	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/handlers"
	"github.com/copyfolio/api/internal/middleware"
	"github.com/copyfolio/api/internal/models"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	packageHandler *handlers.PackageHandler,
	landingHandler *handlers.LandingHandler,
	auditHandler *handlers.AuditHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes, no token required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/admin/login", authHandler.AdminLogin)
	router.Get("/auth/verify", authHandler.Verify)
	router.Get("/packages", packageHandler.ListActive)
	router.Get("/packages/{id}", packageHandler.Get)
	router.Get("/landing", landingHandler.Get)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Post("/auth/logout", authHandler.Logout)

		// Self-or-admin checks live in the handler
		r.Get("/users/{id}", userHandler.Get)
		r.Put("/users/{id}", userHandler.Update)
		r.Put("/users/{id}/password", userHandler.UpdatePassword)

		r.Post("/subscriptions", subscriptionHandler.Activate)
		r.Get("/subscriptions", subscriptionHandler.History)
		r.Get("/subscriptions/current", subscriptionHandler.Current)
		r.Post("/subscriptions/{id}/cancel", subscriptionHandler.Cancel)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSuperadmin))

			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Delete("/users/{id}", userHandler.Delete)

			r.Get("/packages/all", packageHandler.ListAll)
			r.Post("/packages", packageHandler.Create)
			r.Put("/packages/{id}", packageHandler.Update)
			r.Delete("/packages/{id}", packageHandler.Delete)

			r.Put("/landing", landingHandler.Put)
		})

		// Superadmin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleSuperadmin))

			r.Get("/audit", auditHandler.List)
		})
	})
}
