// Package statsupdate implements the client-reported usage delta handler.
// Counters are added server-side; the display strings are last-write-wins.
package statsupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/services/user"
)

// Request carries the reported deltas and display strings.
type Request struct {
	AdsBlocked      int64   `json:"adsBlocked" validate:"gte=0"`
	TrackersBlocked int64   `json:"trackersBlocked" validate:"gte=0"`
	DataSaved       *string `json:"dataSaved"`
	TimeSaved       *string `json:"timeSaved"`
}

// Service is the self-service flow behind this handler.
type Service interface {
	UpdateStats(ctx context.Context, userUID string, update user.StatsUpdate) (*models.Stats, error)
}

// Handler handles POST /api/stats/update and PUT /api/users/stats.
type Handler struct {
	log      *slog.Logger
	users    Service
	validate *validator.Validate
}

// New creates the stats update handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Report usage deltas
// @Description Adds the reported counts to the stored counters and returns the new totals.
// @Tags Stats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Usage deltas"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Router /api/stats/update [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.statsupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	stats, err := h.users.UpdateStats(r.Context(), userUID, user.StatsUpdate{
		AdsBlocked:      req.AdsBlocked,
		TrackersBlocked: req.TrackersBlocked,
		DataSaved:       req.DataSaved,
		TimeSaved:       req.TimeSaved,
	})
	if err != nil {
		log.Error("stats update failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(stats))
}
