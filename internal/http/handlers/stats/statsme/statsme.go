// Package statsme implements the own usage-counters read handler.
package statsme

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
)

// Service is the self-service flow behind this handler.
type Service interface {
	Stats(ctx context.Context, userUID string) (*models.Stats, error)
}

// Handler handles GET /api/stats/me.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New creates the stats read handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Get own usage counters
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/stats/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.statsme"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	stats, err := h.users.Stats(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load stats", sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("User not found"))
		return
	}

	render.JSON(w, r, response.OK(stats))
}
