package models

import "time"

// Subscription statuses driven by the payment processor webhooks.
const (
	SubStatusPending   = "pending"
	SubStatusActive    = "active"
	SubStatusPastDue   = "past_due"
	SubStatusCancelled = "cancelled"
	SubStatusExpired   = "expired"
)

// Billing intervals.
const (
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Invoice statuses.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceFailed  = "failed"
)

// Subscription is a per-user billing record. It is created on checkout
// completion and mutated only by webhook events and the user cancel request;
// cancelled subscriptions are kept for history.
type Subscription struct {
	ID                   string     `json:"id"`
	UserUID              string     `json:"userId"`
	Plan                 string     `json:"plan"`
	Interval             string     `json:"interval"`
	Status               string     `json:"status"`
	Price                float64    `json:"price"`
	Currency             string     `json:"currency"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
	StripeCustomerID     *string    `json:"stripeCustomerId"`
	CurrentPeriodStart   *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool       `json:"cancelAtPeriodEnd"`
	CanceledAt           *time.Time `json:"canceledAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Invoice is an append-only payment record attached to a subscription.
type Invoice struct {
	ID              int64      `json:"id"`
	SubscriptionID  string     `json:"subscriptionId"`
	StripeInvoiceID string     `json:"stripeInvoiceId"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paidAt"`
	PDFURL          *string    `json:"pdfUrl"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AdminSubscription is a subscription row joined with its owner for the
// admin listing. Owner fields are nil when the account was deleted.
type AdminSubscription struct {
	Subscription
	UserName  *string `json:"userName"`
	UserEmail *string `json:"userEmail"`
}
