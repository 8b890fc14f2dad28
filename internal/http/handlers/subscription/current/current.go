// Package current implements the current-subscription read handler.
package current

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// Service is the subscription flow behind this handler.
type Service interface {
	Current(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Handler handles GET /api/subscriptions/me.
type Handler struct {
	log  *slog.Logger
	subs Service
}

// New creates the current-subscription handler.
func New(log *slog.Logger, subs Service) *Handler {
	return &Handler{log: log, subs: subs}
}

// ServeHTTP godoc
// @Summary Current subscription
// @Description Returns the latest active or pending subscription, or null data when there is none.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/subscriptions/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	sub, err := h.subs.Current(r.Context(), userUID)
	if err != nil {
		// having no subscription is the free plan's normal state
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			render.JSON(w, r, response.OK(nil))
			return
		}
		log.Error("failed to load subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(sub))
}
