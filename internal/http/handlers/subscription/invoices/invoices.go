// Package invoices implements the invoice listing handler.
package invoices

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

// Service is the subscription flow behind this handler.
type Service interface {
	Invoices(ctx context.Context, userUID string) ([]*models.Invoice, error)
}

// Handler handles GET /api/subscriptions/invoices.
type Handler struct {
	log  *slog.Logger
	subs Service
}

// New creates the invoices handler.
func New(log *slog.Logger, subs Service) *Handler {
	return &Handler{log: log, subs: subs}
}

// ServeHTTP godoc
// @Summary Invoices
// @Description Returns all invoices across the user's subscriptions.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/subscriptions/invoices [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.invoices"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	list, err := h.subs.Invoices(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load invoices", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(list))
}
