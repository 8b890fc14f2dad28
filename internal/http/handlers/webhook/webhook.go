// Package webhook implements the payment-processor callback endpoint. The
// raw body's signature is verified before any event is interpreted, so forged
// deliveries never reach the ledger.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
)

var eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webhook_events_total",
	Help: "Payment-processor webhook deliveries by event type and result.",
}, []string{"type", "result"})

// Service applies verified events to the subscription ledger.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event *models.StripeEvent) error
}

// Handler handles POST /webhooks/stripe.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
	now           func() time.Time
}

// New creates the webhook handler.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("stripe-signature")
	if signature == "" || !verifySignature(h.webhookSecret, body, signature, h.now()) {
		log.Error("invalid or missing webhook signature")
		eventsProcessed.WithLabelValues("unknown", "bad_signature").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var event models.StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), &event); err != nil {
		log.Error("failed to process webhook event",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			sl.Err(err))
		eventsProcessed.WithLabelValues(event.Type, "error").Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed",
		slog.String("event_id", event.ID),
		slog.String("type", event.Type))
	eventsProcessed.WithLabelValues(event.Type, "ok").Inc()
	w.WriteHeader(http.StatusOK)
}
