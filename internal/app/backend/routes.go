package backend

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/adblockpro/backend/internal/config"
	"github.com/adblockpro/backend/internal/http/handlers/admin/dashboard"
	"github.com/adblockpro/backend/internal/http/handlers/admin/sublist"
	"github.com/adblockpro/backend/internal/http/handlers/admin/userdelete"
	"github.com/adblockpro/backend/internal/http/handlers/admin/userget"
	"github.com/adblockpro/backend/internal/http/handlers/admin/userlist"
	"github.com/adblockpro/backend/internal/http/handlers/admin/userupdate"
	"github.com/adblockpro/backend/internal/http/handlers/auth/forgotpassword"
	"github.com/adblockpro/backend/internal/http/handlers/auth/login"
	"github.com/adblockpro/backend/internal/http/handlers/auth/logout"
	"github.com/adblockpro/backend/internal/http/handlers/auth/me"
	"github.com/adblockpro/backend/internal/http/handlers/auth/refresh"
	"github.com/adblockpro/backend/internal/http/handlers/auth/register"
	"github.com/adblockpro/backend/internal/http/handlers/auth/resetpassword"
	"github.com/adblockpro/backend/internal/http/handlers/auth/verifyemail"
	"github.com/adblockpro/backend/internal/http/handlers/health"
	"github.com/adblockpro/backend/internal/http/handlers/stats/statsglobal"
	"github.com/adblockpro/backend/internal/http/handlers/stats/statsme"
	"github.com/adblockpro/backend/internal/http/handlers/stats/statsupdate"
	"github.com/adblockpro/backend/internal/http/handlers/subscription/cancel"
	"github.com/adblockpro/backend/internal/http/handlers/subscription/checkout"
	"github.com/adblockpro/backend/internal/http/handlers/subscription/current"
	"github.com/adblockpro/backend/internal/http/handlers/subscription/history"
	"github.com/adblockpro/backend/internal/http/handlers/subscription/invoices"
	"github.com/adblockpro/backend/internal/http/handlers/user/accountdelete"
	"github.com/adblockpro/backend/internal/http/handlers/user/profileget"
	"github.com/adblockpro/backend/internal/http/handlers/user/profileupdate"
	"github.com/adblockpro/backend/internal/http/handlers/user/settingsupdate"
	"github.com/adblockpro/backend/internal/http/handlers/webhook"
	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/paymentprovider"
	adminservice "github.com/adblockpro/backend/internal/services/admin"
	authservice "github.com/adblockpro/backend/internal/services/auth"
	statsservice "github.com/adblockpro/backend/internal/services/stats"
	subservice "github.com/adblockpro/backend/internal/services/subscription"
	userservice "github.com/adblockpro/backend/internal/services/user"
)

// registerRoutes wires every endpoint. The rate limiter covers /api only;
// webhooks, health and metrics stay outside it so processor retries and
// probes are never throttled.
func registerRoutes(
	r chi.Router,
	cfg *config.Config,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	auth *authservice.Service,
	users *userservice.Service,
	subs *subservice.Service,
	stats *statsservice.Service,
	admin *adminservice.Service,
	provider *paymentprovider.Client,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", register.New(logger, auth).ServeHTTP)
			r.Post("/login", login.New(logger, auth).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, auth).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(logger, auth).ServeHTTP)
			r.Post("/reset-password", resetpassword.New(logger, auth).ServeHTTP)
			r.Get("/verify-email", verifyemail.New(logger, auth).ServeHTTP)
			r.Post("/logout", logout.New())

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
				r.Get("/me", me.New(logger, auth).ServeHTTP)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/profile", profileget.New(logger, users).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, users).ServeHTTP)
			r.Put("/settings", settingsupdate.New(logger, users).ServeHTTP)
			r.Put("/stats", statsupdate.New(logger, users).ServeHTTP)
			r.Delete("/account", accountdelete.New(logger, users).ServeHTTP)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/me", current.New(logger, subs).ServeHTTP)
			r.Get("/history", history.New(logger, subs).ServeHTTP)
			r.Get("/invoices", invoices.New(logger, subs).ServeHTTP)
			r.Post("/cancel", cancel.New(logger, subs).ServeHTTP)
			r.Post("/checkout", checkout.New(logger, provider).ServeHTTP)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/global", statsglobal.New(logger, stats).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
				r.Get("/me", statsme.New(logger, users).ServeHTTP)
				r.Post("/update", statsupdate.New(logger, users).ServeHTTP)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Get("/stats", dashboard.New(logger, admin).ServeHTTP)
			r.Get("/users", userlist.New(logger, admin).ServeHTTP)
			r.Get("/users/{id}", userget.New(logger, admin).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, admin).ServeHTTP)
			r.Delete("/users/{id}", userdelete.New(logger, admin).ServeHTTP)
			r.Get("/subscriptions", sublist.New(logger, admin).ServeHTTP)
		})
	})

	r.Post("/webhooks/stripe", webhook.New(logger, subs, cfg.StripeWebhookSecret).ServeHTTP)
	r.Get("/health", health.New().ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusNotFound)
		render.JSON(w, req, response.Error("Route not found"))
	})
}
