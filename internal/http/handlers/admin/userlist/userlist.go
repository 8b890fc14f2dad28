// Package userlist implements the paginated admin user listing.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/services/admin"
)

// Service is the admin flow behind this handler.
type Service interface {
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, *admin.Pagination, error)
}

// Handler handles GET /api/admin/users.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New creates the user listing handler.
func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{log: log, admin: admin}
}

// ServeHTTP godoc
// @Summary List users
// @Description Paginated listing with case-insensitive search on name/email and plan/status filters.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param search query string false "Substring match on name or email"
// @Param plan query string false "Filter by plan"
// @Param status query string false "verified or unverified"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /api/admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.UserFilter{
		Search: q.Get("search"),
		Plan:   q.Get("plan"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	switch q.Get("status") {
	case "verified":
		verified := true
		filter.Verified = &verified
	case "unverified":
		verified := false
		filter.Verified = &verified
	}

	users, pagination, err := h.admin.ListUsers(r.Context(), filter)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(map[string]any{
		"users":      users,
		"pagination": pagination,
	}))
}
