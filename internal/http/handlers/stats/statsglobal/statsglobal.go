// Package statsglobal implements the public site-wide aggregate handler.
package statsglobal

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

// Service is the aggregate flow behind this handler.
type Service interface {
	Global(ctx context.Context) (*models.GlobalStats, error)
}

// Handler handles GET /api/stats/global.
type Handler struct {
	log   *slog.Logger
	stats Service
}

// New creates the global stats handler.
func New(log *slog.Logger, stats Service) *Handler {
	return &Handler{log: log, stats: stats}
}

// ServeHTTP godoc
// @Summary Site-wide blocking counters
// @Description Public aggregate across all users, cached server-side.
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/stats/global [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.statsglobal"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.stats.Global(r.Context())
	if err != nil {
		log.Error("failed to load global stats", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(stats))
}
