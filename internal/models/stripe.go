package models

import "encoding/json"

// Stripe webhook event types the ledger reacts to. Everything else is
// acknowledged and ignored.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// StripeEvent is the envelope of a webhook delivery. Data.Object is kept
// raw and decoded per event type.
type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// StripeCheckoutSession is the object of a checkout.session.completed event.
// ClientReferenceID carries the user uid set when the session was created.
type StripeCheckoutSession struct {
	ID                string            `json:"id"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Metadata          map[string]string `json:"metadata"`
}

// StripeInvoice is the object of invoice.payment_succeeded / payment_failed.
// Amounts are in the smallest currency unit.
type StripeInvoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid"`
	AmountDue    int64  `json:"amount_due"`
	Currency     string `json:"currency"`
	InvoicePDF   string `json:"invoice_pdf"`
}

// StripeSubscriptionObject is the object of customer.subscription.deleted.
type StripeSubscriptionObject struct {
	ID string `json:"id"`
}
