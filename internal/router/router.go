package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-videotube/internal/config"
	"go-videotube/internal/handler"
	"go-videotube/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Channel *handler.ChannelHandler
	Audit   *handler.AuditHandler
	Health  *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/users", func(users chi.Router) {
		users.Use(middleware.Timeout(cfg.RequestTimeout))
		users.Use(middleware.BodyLimit(cfg.MaxJSONBody))

		users.Post("/register", h.Auth.Register)
		users.Post("/login", h.Auth.Login)
		users.Post("/refresh-token", h.Auth.Refresh)

		users.Group(func(gated chi.Router) {
			gated.Use(authMiddleware.RequireAuth)

			gated.Post("/logout", h.Auth.Logout)
			gated.Post("/change-password", h.Auth.ChangePassword)
			gated.Get("/current-user", h.Auth.CurrentUser)
			gated.Get("/c/{username}", h.Channel.Profile)
			gated.Get("/history", h.Channel.WatchHistory)
			gated.Get("/activity", h.Audit.Activity)
		})
	})

	return r
}
