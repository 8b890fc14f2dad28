// Package dashboard implements the admin aggregate-counters handler.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
)

// Service is the admin flow behind this handler.
type Service interface {
	DashboardStats(ctx context.Context) (*models.AdminStats, error)
}

// Handler handles GET /api/admin/stats.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New creates the dashboard handler.
func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{log: log, admin: admin}
}

// ServeHTTP godoc
// @Summary Admin dashboard counters
// @Description User totals, 30-day activity, signups in the last day, active subscriptions and summed monthly revenue.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /api/admin/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.admin.DashboardStats(r.Context())
	if err != nil {
		log.Error("failed to load dashboard stats", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(stats))
}
