// Package checkout implements the hosted-checkout creation handler. The
// completion webhook, not this handler, records the subscription.
package checkout

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
	"github.com/adblockpro/backend/internal/paymentprovider"
)

// Prices in cents, matching the pricing page.
var planPrices = map[string]map[string]int64{
	models.PlanPro:   {models.IntervalMonthly: 300, models.IntervalYearly: 2800},
	models.PlanTeams: {models.IntervalMonthly: 800, models.IntervalYearly: 7800},
}

// Request selects the plan to buy.
type Request struct {
	Plan     string `json:"plan" validate:"required,oneof=pro teams"`
	Interval string `json:"interval" validate:"required,oneof=monthly yearly"`
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params paymentprovider.CheckoutParams) (*paymentprovider.CheckoutSession, error)
}

// Handler handles POST /api/subscriptions/checkout.
type Handler struct {
	log      *slog.Logger
	provider Provider
	validate *validator.Validate
}

// New creates the checkout handler.
func New(log *slog.Logger, provider Provider) *Handler {
	return &Handler{
		log:      log,
		provider: provider,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Start a paid-plan checkout
// @Description Creates a hosted checkout session and returns its URL. The subscription is recorded when the completion webhook arrives.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Plan selection"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Router /api/subscriptions/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"

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
	session, err := h.provider.CreateCheckoutSession(r.Context(), paymentprovider.CheckoutParams{
		ClientReferenceID: userUID,
		Plan:              req.Plan,
		Interval:          req.Interval,
		UnitAmount:        planPrices[req.Plan][req.Interval],
		Currency:          "usd",
		ProductName:       "AdBlock Pro " + req.Plan,
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("checkout session created",
		slog.String("user_uid", userUID),
		slog.String("session_id", session.ID))
	render.JSON(w, r, response.OK(map[string]any{
		"sessionId": session.ID,
		"url":       session.URL,
	}))
}
