package api

import (
	"agent-market/internal/api/handlers"
	"agent-market/internal/api/middleware"
	"agent-market/internal/app"
	"agent-market/internal/auth"
	adminService "agent-market/internal/service/admin"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the HTTP router with all API routes
func NewRouter(config *app.Config) http.Handler {
	cfg := config.AppConfig

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	admin := adminService.NewAdminService(config.DB, cfg.Admin)

	authHandlers := auth.NewHandlers(config.DB, issuer, admin, cfg.Admin.Email)
	agentHandlers := handlers.NewAgentHandlers(config)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(config)
	chatHandlers := handlers.NewChatHandlers(config)
	adminHandlers := handlers.NewAdminHandlers(config, admin)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler)

		r.Post("/auth/register", authHandlers.RegisterHandler)
		r.Post("/auth/login", authHandlers.LoginHandler)

		r.Get("/agents", agentHandlers.ListMarketplaceHandler)
		r.Get("/agents/{id}", agentHandlers.GetMarketplaceAgentHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(issuer))

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", subscriptionHandlers.SubscribeHandler)
				r.Get("/", subscriptionHandlers.ListSubscriptionsHandler)
				r.Get("/{agentId}", subscriptionHandlers.SubscriptionStatusHandler)
				r.Delete("/{agentId}", subscriptionHandlers.CancelSubscriptionHandler)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", chatHandlers.CreateConversationHandler)
				r.Get("/", chatHandlers.GetConversationsHandler)
				r.Get("/{id}/messages", chatHandlers.GetConversationMessagesHandler)
				r.Post("/{id}/messages", chatHandlers.PostMessageHandler)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandlers.AdminLoginHandler)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(issuer))
				r.Use(auth.RequireAdmin)

				r.Route("/agents", func(r chi.Router) {
					r.Post("/", agentHandlers.CreateAgentHandler)
					r.Get("/", agentHandlers.ListAgentsHandler)
					r.Get("/{id}", agentHandlers.GetAgentHandler)
					r.Patch("/{id}", agentHandlers.UpdateAgentHandler)
					r.Delete("/{id}", agentHandlers.DeleteAgentHandler)
				})
				r.Get("/stats", adminHandlers.StatsHandler)
				r.Get("/conversations", adminHandlers.ListAllConversationsHandler)
				r.Post("/subscriptions/{id}/expire", subscriptionHandlers.ExpireSubscriptionHandler)
			})
		})
	})

	return r
}
