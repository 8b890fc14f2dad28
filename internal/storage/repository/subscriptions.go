package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/adblockpro/backend/internal/models"
)

const subscriptionColumns = `id, user_uid, plan, "interval", status, price, currency,
		stripe_subscription_id, stripe_customer_id, current_period_start, current_period_end,
		cancel_at_period_end, canceled_at, created_at, updated_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var (
		stripeSubID, stripeCustomerID    sql.NullString
		periodStart, periodEnd, canceled sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Plan, &sub.Interval, &sub.Status,
		&sub.Price, &sub.Currency, &stripeSubID, &stripeCustomerID,
		&periodStart, &periodEnd, &sub.CancelAtPeriodEnd, &canceled,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if stripeSubID.Valid {
		sub.StripeSubscriptionID = &stripeSubID.String
	}
	if stripeCustomerID.Valid {
		sub.StripeCustomerID = &stripeCustomerID.String
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	if canceled.Valid {
		sub.CanceledAt = &canceled.Time
	}
	return sub, nil
}

// UpsertSubscription creates a subscription keyed by the external
// subscription id, or refreshes the existing row when the processor replays
// the checkout event. Returns the subscription id.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.UpsertSubscription"

	query := `INSERT INTO subscriptions (id, user_uid, plan, "interval", status, price, currency,
			      stripe_subscription_id, stripe_customer_id, current_period_start, current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  ON CONFLICT (stripe_subscription_id) WHERE stripe_subscription_id IS NOT NULL
			  DO UPDATE SET plan = EXCLUDED.plan,
			      "interval" = EXCLUDED."interval",
			      status = EXCLUDED.status,
			      price = EXCLUDED.price,
			      currency = EXCLUDED.currency,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = now()
			  RETURNING id`
	var id string
	if err := s.DB.QueryRowContext(ctx, query,
		uuid.New().String(), sub.UserUID, sub.Plan, sub.Interval, sub.Status, sub.Price,
		sub.Currency, sub.StripeSubscriptionID, sub.StripeCustomerID,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetCurrentSubscription returns the latest active or pending subscription
// of a user.
func (s *Storage) GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetCurrentSubscription"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1 AND status IN ('active', 'pending')
			  ORDER BY created_at DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptionsByUser returns the full subscription history, newest first.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListInvoicesByUser returns all invoices across the user's subscriptions,
// newest first.
func (s *Storage) ListInvoicesByUser(ctx context.Context, userUID string) ([]*models.Invoice, error) {
	const op = "storage.ListInvoicesByUser"

	query := `SELECT i.id, i.subscription_id, i.stripe_invoice_id, i.amount, i.currency,
			      i.status, i.paid_at, i.pdf_url, i.created_at
			  FROM invoices i
			  JOIN subscriptions s ON s.id = i.subscription_id
			  WHERE s.user_uid = $1
			  ORDER BY i.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Invoice
	for rows.Next() {
		inv := &models.Invoice{}
		var paidAt sql.NullTime
		var pdfURL sql.NullString
		if err := rows.Scan(&inv.ID, &inv.SubscriptionID, &inv.StripeInvoiceID, &inv.Amount,
			&inv.Currency, &inv.Status, &paidAt, &pdfURL, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if paidAt.Valid {
			inv.PaidAt = &paidAt.Time
		}
		if pdfURL.Valid {
			inv.PDFURL = &pdfURL.String
		}
		result = append(result, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetCancelAtPeriodEnd flags the latest active subscription of the user for
// cancellation at period end, without changing the status.
func (s *Storage) SetCancelAtPeriodEnd(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.SetCancelAtPeriodEnd"

	query := `UPDATE subscriptions
			  SET cancel_at_period_end = TRUE, updated_at = now()
			  WHERE id = (SELECT id FROM subscriptions
			              WHERE user_uid = $1 AND status = 'active'
			              ORDER BY created_at DESC LIMIT 1)
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// AddInvoice appends an invoice to the subscription matched by external id.
// Replayed deliveries of the same invoice are ignored.
func (s *Storage) AddInvoice(ctx context.Context, stripeSubscriptionID string, inv models.Invoice) error {
	const op = "storage.AddInvoice"

	query := `INSERT INTO invoices (subscription_id, stripe_invoice_id, amount, currency, status, paid_at, pdf_url)
			  SELECT id, $2, $3, $4, $5, $6, $7
			  FROM subscriptions WHERE stripe_subscription_id = $1
			  ON CONFLICT (subscription_id, stripe_invoice_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, stripeSubscriptionID,
		inv.StripeInvoiceID, inv.Amount, inv.Currency, inv.Status, inv.PaidAt, inv.PDFURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		// either a duplicate delivery or an unknown subscription
		var exists bool
		err = s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE stripe_subscription_id = $1)`,
			stripeSubscriptionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
	}
	return nil
}

// UpdateStatusByStripeID transitions the subscription status.
func (s *Storage) UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error {
	const op = "storage.UpdateStatusByStripeID"

	query := `UPDATE subscriptions SET status = $2, updated_at = now()
			  WHERE stripe_subscription_id = $1`
	result, err := s.DB.ExecContext(ctx, query, stripeSubscriptionID, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// CancelByStripeID marks the subscription cancelled, stamps the cancellation
// time and returns the owning user uid so the caller can revert the plan.
func (s *Storage) CancelByStripeID(ctx context.Context, stripeSubscriptionID string) (string, error) {
	const op = "storage.CancelByStripeID"

	query := `UPDATE subscriptions
			  SET status = 'cancelled', canceled_at = now(), updated_at = now()
			  WHERE stripe_subscription_id = $1
			  RETURNING user_uid`
	var userUID string
	err := s.DB.QueryRowContext(ctx, query, stripeSubscriptionID).Scan(&userUID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// ListAllSubscriptions returns a page of subscriptions joined with their
// owners for the admin listing, plus the total count.
func (s *Storage) ListAllSubscriptions(ctx context.Context, page, limit int) ([]*models.AdminSubscription, int64, error) {
	const op = "storage.ListAllSubscriptions"

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT s.id, s.user_uid, s.plan, s."interval", s.status, s.price, s.currency,
			      s.stripe_subscription_id, s.stripe_customer_id,
			      s.current_period_start, s.current_period_end,
			      s.cancel_at_period_end, s.canceled_at, s.created_at, s.updated_at,
			      u.name, u.email
			  FROM subscriptions s
			  LEFT JOIN users u ON u.uid = s.user_uid
			  ORDER BY s.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AdminSubscription
	for rows.Next() {
		item := &models.AdminSubscription{}
		var (
			stripeSubID, stripeCustomerID    sql.NullString
			periodStart, periodEnd, canceled sql.NullTime
			userName, userEmail              sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Plan, &item.Interval, &item.Status,
			&item.Price, &item.Currency, &stripeSubID, &stripeCustomerID,
			&periodStart, &periodEnd, &item.CancelAtPeriodEnd, &canceled,
			&item.CreatedAt, &item.UpdatedAt, &userName, &userEmail); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if stripeSubID.Valid {
			item.StripeSubscriptionID = &stripeSubID.String
		}
		if stripeCustomerID.Valid {
			item.StripeCustomerID = &stripeCustomerID.String
		}
		if periodStart.Valid {
			item.CurrentPeriodStart = &periodStart.Time
		}
		if periodEnd.Valid {
			item.CurrentPeriodEnd = &periodEnd.Time
		}
		if canceled.Valid {
			item.CanceledAt = &canceled.Time
		}
		if userName.Valid {
			item.UserName = &userName.String
		}
		if userEmail.Valid {
			item.UserEmail = &userEmail.String
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}
