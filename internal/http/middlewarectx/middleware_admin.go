package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/authz"
	"github.com/adblockpro/backend/internal/http/response"
)

// RequireAdmin gates a route tree on the admin policy. Must run after
// JWTMiddleware so the role is in the context.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"

			role, ok := RoleFromContext(r.Context())
			if !ok || !authz.CanAccessAdmin(role) {
				log.Warn("admin access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not authorized to access this route"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
