// Package middlewarectx contains the HTTP middleware chain pieces: JWT
// authentication, admin gating and per-IP rate limiting. Authenticated
// identity travels in the request context under the package's keys.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/lib/sl"
)

// Key is the context key type for request-scoped identity values.
type Key string

const (
	// UserUID is the authenticated user's uid.
	UserUID Key = "user_uid"
	// Role is the authenticated user's role.
	Role Key = "role"
)

// TokenParser validates access tokens and extracts their claims.
type TokenParser interface {
	ParseAccessToken(token string) (*jwt.AccessClaims, error)
}

// JWTMiddleware authenticates the Authorization bearer token and stores the
// uid and role in the request context. Failures get a 401 envelope.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Not authorized to access this route"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseAccessToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Not authorized to access this route"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserUIDFromContext returns the authenticated uid set by JWTMiddleware.
func UserUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	return uid, ok && uid != ""
}

// RoleFromContext returns the authenticated role set by JWTMiddleware.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(Role).(string)
	return role, ok && role != ""
}
