// Package subscription contains the subscription ledger: the user-facing
// read/cancel operations and the application of payment-processor webhook
// events.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/adblockpro/backend/internal/models"
)

// The billing period is a fixed 30 days from checkout, deliberately not
// taken from the processor payload.
const billingPeriod = 30 * 24 * time.Hour

// Repository is the persistence contract of the ledger.
type Repository interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
	ListInvoicesByUser(ctx context.Context, userUID string) ([]*models.Invoice, error)
	SetCancelAtPeriodEnd(ctx context.Context, userUID string) (*models.Subscription, error)
	AddInvoice(ctx context.Context, stripeSubscriptionID string, inv models.Invoice) error
	UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error
	CancelByStripeID(ctx context.Context, stripeSubscriptionID string) (string, error)
	UpdateUserPlan(ctx context.Context, userUID, plan string) error
}

// Service implements the subscription ledger.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates a subscription Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Current returns the latest active or pending subscription of the user.
func (s *Service) Current(ctx context.Context, userUID string) (*models.Subscription, error) {
	return s.repo.GetCurrentSubscription(ctx, userUID)
}

// History returns all subscriptions of the user, newest first.
func (s *Service) History(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptionsByUser(ctx, userUID)
}

// Invoices returns all invoices across the user's subscriptions.
func (s *Service) Invoices(ctx context.Context, userUID string) ([]*models.Invoice, error) {
	return s.repo.ListInvoicesByUser(ctx, userUID)
}

// Cancel flags the active subscription for cancellation at period end. The
// status stays active until the processor confirms via webhook.
func (s *Service) Cancel(ctx context.Context, userUID string) (*models.Subscription, error) {
	return s.repo.SetCancelAtPeriodEnd(ctx, userUID)
}

// ProcessWebhookEvent applies one verified processor event to the ledger.
// Unrecognized event types are ignored so at-least-once delivery is never
// rejected.
func (s *Service) ProcessWebhookEvent(ctx context.Context, event *models.StripeEvent) error {
	const op = "subscription.ProcessWebhookEvent"

	switch event.Type {
	case models.EventCheckoutCompleted:
		var session models.StripeCheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applyCheckoutCompleted(ctx, &session)
	case models.EventInvoicePaid:
		var invoice models.StripeInvoice
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applyInvoicePaid(ctx, &invoice)
	case models.EventInvoiceFailed:
		var invoice models.StripeInvoice
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applyInvoiceFailed(ctx, &invoice)
	case models.EventSubscriptionDeleted:
		var sub models.StripeSubscriptionObject
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applySubscriptionDeleted(ctx, sub.ID)
	default:
		s.log.Info("ignored webhook event", slog.String("type", event.Type))
		return nil
	}
}

// applyCheckoutCompleted creates (or, on replay, refreshes) the subscription
// keyed by the external subscription id and moves the user to the paid plan.
func (s *Service) applyCheckoutCompleted(ctx context.Context, session *models.StripeCheckoutSession) error {
	const op = "subscription.applyCheckoutCompleted"

	plan := session.Metadata["plan"]
	interval := session.Metadata["interval"]
	now := time.Now().UTC()
	periodEnd := now.Add(billingPeriod)

	sub := models.Subscription{
		UserUID:            session.ClientReferenceID,
		Plan:               plan,
		Interval:           interval,
		Status:             models.SubStatusActive,
		Price:              float64(session.AmountTotal) / 100,
		Currency:           session.Currency,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
	}
	if session.Subscription != "" {
		sub.StripeSubscriptionID = &session.Subscription
	}
	if session.Customer != "" {
		sub.StripeCustomerID = &session.Customer
	}

	id, err := s.repo.UpsertSubscription(ctx, sub)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserPlan(ctx, session.ClientReferenceID, plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated",
		slog.String("subscription_id", id),
		slog.String("user_uid", session.ClientReferenceID),
		slog.String("plan", plan))
	return nil
}

func (s *Service) applyInvoicePaid(ctx context.Context, invoice *models.StripeInvoice) error {
	const op = "subscription.applyInvoicePaid"

	now := time.Now().UTC()
	inv := models.Invoice{
		StripeInvoiceID: invoice.ID,
		Amount:          float64(invoice.AmountPaid) / 100,
		Currency:        invoice.Currency,
		Status:          models.InvoicePaid,
		PaidAt:          &now,
	}
	if invoice.InvoicePDF != "" {
		inv.PDFURL = &invoice.InvoicePDF
	}
	if err := s.repo.AddInvoice(ctx, invoice.Subscription, inv); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) applyInvoiceFailed(ctx context.Context, invoice *models.StripeInvoice) error {
	const op = "subscription.applyInvoiceFailed"

	inv := models.Invoice{
		StripeInvoiceID: invoice.ID,
		Amount:          float64(invoice.AmountDue) / 100,
		Currency:        invoice.Currency,
		Status:          models.InvoiceFailed,
	}
	if err := s.repo.AddInvoice(ctx, invoice.Subscription, inv); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateStatusByStripeID(ctx, invoice.Subscription, models.SubStatusPastDue); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// applySubscriptionDeleted cancels the ledger record and reverts the owner
// to the free plan.
func (s *Service) applySubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error {
	const op = "subscription.applySubscriptionDeleted"

	userUID, err := s.repo.CancelByStripeID(ctx, stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserPlan(ctx, userUID, models.PlanFree); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription cancelled",
		slog.String("stripe_subscription_id", stripeSubscriptionID),
		slog.String("user_uid", userUID))
	return nil
}
