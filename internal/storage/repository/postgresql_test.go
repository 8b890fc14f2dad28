package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adblockpro/backend/internal/models"
)

func TestCreateUser_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "alice@example.com", "Alice")

	_, err := storage.CreateUser(ctx, models.User{
		Email:        "ALICE@example.com",
		Name:         "Alice Again",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	// lookup matches regardless of case and returns the column defaults
	user, err := storage.GetUserByEmail(ctx, "Alice@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "0 MB", user.Stats.DataSaved)
	assert.True(t, user.Settings.Notifications.Email)
	assert.False(t, user.Settings.Privacy.BlockWebRTC)

	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetPasswordByToken_SingleUse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "bob@example.com", "Bob")
	require.NoError(t, storage.SetResetPasswordToken(ctx, uid, "reset-token", time.Now().Add(30*time.Minute)))

	require.NoError(t, storage.ResetPasswordByToken(ctx, "reset-token", "newhash"))

	user, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "newhash", user.PasswordHash)
	assert.Nil(t, user.ResetPasswordToken)

	// the token was consumed by the first reset
	err = storage.ResetPasswordByToken(ctx, "reset-token", "anotherhash")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// expired tokens never match
	require.NoError(t, storage.SetResetPasswordToken(ctx, uid, "stale-token", time.Now().Add(-time.Minute)))
	err = storage.ResetPasswordByToken(ctx, "stale-token", "anotherhash")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVerifyEmailByToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	token := "verify-token"
	uid, err := storage.CreateUser(ctx, models.User{
		Email:             "carol@example.com",
		Name:              "Carol",
		PasswordHash:      "hashedpassword",
		Role:              models.RoleUser,
		Plan:              models.PlanFree,
		VerificationToken: &token,
	})
	require.NoError(t, err)

	user, err := storage.VerifyEmailByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)

	// consumed tokens and unknown tokens behave the same
	_, err = storage.VerifyEmailByToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestUpsertSubscription_ReplayedEventKeepsOneRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "dave@example.com", "Dave")
	stripeID := "sub_replay"
	periodStart := time.Now().UTC()
	periodEnd := periodStart.AddDate(0, 1, 0)
	sub := models.Subscription{
		UserUID:              uid,
		Plan:                 models.PlanPro,
		Interval:             models.IntervalMonthly,
		Status:               models.SubStatusActive,
		Price:                3.00,
		Currency:             "usd",
		StripeSubscriptionID: &stripeID,
		CurrentPeriodStart:   &periodStart,
		CurrentPeriodEnd:     &periodEnd,
	}

	firstID, err := storage.UpsertSubscription(ctx, sub)
	require.NoError(t, err)

	// a redelivered checkout event updates the same row
	sub.Plan = models.PlanTeams
	sub.Price = 8.00
	secondID, err := storage.UpsertSubscription(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	var count int
	require.NoError(t, storage.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&count))
	assert.Equal(t, 1, count)

	current, err := storage.GetCurrentSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.PlanTeams, current.Plan)
	assert.Equal(t, 8.00, current.Price)
}

func TestAddInvoice_DuplicateDeliveryIsIgnored(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "erin@example.com", "Erin")
	factory.CreateActiveSubscription(t, uid, "sub_invoices")

	paidAt := time.Now().UTC()
	invoice := models.Invoice{
		StripeInvoiceID: "in_1",
		Amount:          3.00,
		Currency:        "usd",
		Status:          models.InvoicePaid,
		PaidAt:          &paidAt,
	}

	require.NoError(t, storage.AddInvoice(ctx, "sub_invoices", invoice))
	require.NoError(t, storage.AddInvoice(ctx, "sub_invoices", invoice))

	invoices, err := storage.ListInvoicesByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "in_1", invoices[0].StripeInvoiceID)
	assert.NotNil(t, invoices[0].PaidAt)

	err = storage.AddInvoice(ctx, "sub_unknown", invoice)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestAddStats_DeltasAccumulate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "frank@example.com", "Frank")

	dataSaved := "1.2 MB"
	_, err := storage.AddStats(ctx, uid, 5, 2, &dataSaved, nil)
	require.NoError(t, err)

	// a second report adds to the counters, nil strings keep the last value
	stats, err := storage.AddStats(ctx, uid, 5, 3, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.AdsBlocked)
	assert.Equal(t, int64(5), stats.TrackersBlocked)
	assert.Equal(t, "1.2 MB", stats.DataSaved)
	assert.Equal(t, "0 hours", stats.TimeSaved)

	_, err = storage.AddStats(ctx, "00000000-0000-0000-0000-000000000000", 1, 1, nil, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMergeSettings_PatchKeepsOtherToggles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "grace@example.com", "Grace")

	settings, err := storage.MergeSettings(ctx, uid, []byte(`{"email":false}`), nil)
	require.NoError(t, err)
	assert.False(t, settings.Notifications.Email)
	assert.True(t, settings.Notifications.Browser)
	assert.True(t, settings.Privacy.BlockTrackers)

	settings, err = storage.MergeSettings(ctx, uid, nil, []byte(`{"blockWebRTC":true}`))
	require.NoError(t, err)
	assert.False(t, settings.Notifications.Email)
	assert.True(t, settings.Privacy.BlockWebRTC)
}

func TestDeleteUser_KeepsBillingHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "heidi@example.com", "Heidi")
	subID := factory.CreateActiveSubscription(t, uid, "sub_history")

	require.NoError(t, storage.DeleteUser(ctx, uid))

	_, err := storage.GetUser(ctx, uid)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// subscription rows survive the account deletion
	var count int
	require.NoError(t, storage.DB.QueryRow(
		`SELECT COUNT(*) FROM subscriptions WHERE id = $1`, subID).Scan(&count))
	assert.Equal(t, 1, count)

	// the admin listing tolerates the orphaned owner
	subs, total, err := storage.ListAllSubscriptions(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, subs, 1)
	assert.Nil(t, subs[0].UserName)

	err = storage.DeleteUser(ctx, uid)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubscriptionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "ivan@example.com", "Ivan")

	_, err := storage.SetCancelAtPeriodEnd(ctx, uid)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	factory.CreateActiveSubscription(t, uid, "sub_lifecycle")

	flagged, err := storage.SetCancelAtPeriodEnd(ctx, uid)
	require.NoError(t, err)
	assert.True(t, flagged.CancelAtPeriodEnd)
	assert.Equal(t, models.SubStatusActive, flagged.Status)

	require.NoError(t, storage.UpdateStatusByStripeID(ctx, "sub_lifecycle", models.SubStatusPastDue))

	ownerUID, err := storage.CancelByStripeID(ctx, "sub_lifecycle")
	require.NoError(t, err)
	assert.Equal(t, uid, ownerUID)

	_, err = storage.GetCurrentSubscription(ctx, uid)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	history, err := storage.ListSubscriptionsByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.SubStatusCancelled, history[0].Status)
	assert.NotNil(t, history[0].CanceledAt)

	err = storage.UpdateStatusByStripeID(ctx, "sub_unknown", models.SubStatusActive)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestAggregates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	first := factory.CreateUser(t, "judy@example.com", "Judy")
	second := factory.CreateUser(t, "karl@example.com", "Karl")
	_, err := storage.AddStats(ctx, first, 100, 40, nil, nil)
	require.NoError(t, err)
	_, err = storage.AddStats(ctx, second, 50, 10, nil, nil)
	require.NoError(t, err)
	require.NoError(t, storage.UpdateLastLogin(ctx, first))
	factory.CreateActiveSubscription(t, first, "sub_judy")

	global, err := storage.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(150), global.TotalAdsBlocked)
	assert.Equal(t, int64(50), global.TotalTrackersBlocked)
	assert.Equal(t, int64(2), global.TotalUsers)

	admin, err := storage.GetAdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.TotalUsers)
	assert.Equal(t, int64(1), admin.ActiveUsers)
	assert.Equal(t, int64(2), admin.NewUsersToday)
	assert.Equal(t, int64(1), admin.TotalSubscriptions)
	assert.InDelta(t, 3.00, admin.MonthlyRevenue, 0.001)
}

func TestListUsers_Filters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	alice := factory.CreateUser(t, "alice@example.com", "Alice")
	factory.CreateUser(t, "bob@example.com", "Bob")
	verified := true
	_, err := storage.AdminUpdateUser(ctx, alice, nil, nil, &verified)
	require.NoError(t, err)

	users, total, err := storage.ListUsers(ctx, models.UserFilter{Page: 1, Limit: 20, Search: "ali"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, alice, users[0].UID)

	users, total, err = storage.ListUsers(ctx, models.UserFilter{Page: 1, Limit: 20, Verified: &verified})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, alice, users[0].UID)

	_, total, err = storage.ListUsers(ctx, models.UserFilter{Page: 1, Limit: 20, Plan: models.PlanTeams})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
