// Package sublist implements the admin subscription listing with joined
// owner details.
package sublist

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
	ListSubscriptions(ctx context.Context, page, limit int) ([]*models.AdminSubscription, *admin.Pagination, error)
}

// Handler handles GET /api/admin/subscriptions.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New creates the subscription listing handler.
func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{log: log, admin: admin}
}

// ServeHTTP godoc
// @Summary List all subscriptions
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /api/admin/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.sublist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subs, pagination, err := h.admin.ListSubscriptions(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(map[string]any{
		"subscriptions": subs,
		"pagination":    pagination,
	}))
}
