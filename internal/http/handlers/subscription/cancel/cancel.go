// Package cancel implements the user-initiated cancellation handler. The
// subscription stays active until the processor confirms at period end.
package cancel

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
	Cancel(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Handler handles POST /api/subscriptions/cancel.
type Handler struct {
	log  *slog.Logger
	subs Service
}

// New creates the cancel handler.
func New(log *slog.Logger, subs Service) *Handler {
	return &Handler{log: log, subs: subs}
}

// ServeHTTP godoc
// @Summary Cancel subscription
// @Description Flags the active subscription for cancellation at period end.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "No active subscription"
// @Router /api/subscriptions/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	sub, err := h.subs.Cancel(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("No active subscription found"))
			return
		}
		log.Error("cancel failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("subscription flagged for cancellation", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKMessage("Subscription will be cancelled at the end of the billing period", sub))
}
