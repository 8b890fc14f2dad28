package repository

import (
	"context"
	"fmt"

	"github.com/adblockpro/backend/internal/models"
)

// GetGlobalStats sums the usage counters across all users for the public
// marketing aggregate.
func (s *Storage) GetGlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	const op = "storage.GetGlobalStats"

	query := `SELECT COALESCE(SUM(ads_blocked), 0), COALESCE(SUM(trackers_blocked), 0), COUNT(*)
			  FROM users`
	var stats models.GlobalStats
	if err := s.DB.QueryRowContext(ctx, query).
		Scan(&stats.TotalAdsBlocked, &stats.TotalTrackersBlocked, &stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// GetAdminStats builds the admin dashboard aggregate: user counts plus the
// number of active subscriptions and their summed monthly revenue.
func (s *Storage) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	const op = "storage.GetAdminStats"

	var stats models.AdminStats
	usersQuery := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE last_login >= now() - INTERVAL '30 days'),
			      COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '24 hours')
			  FROM users`
	if err := s.DB.QueryRowContext(ctx, usersQuery).
		Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.NewUsersToday); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subsQuery := `SELECT COUNT(*), COALESCE(SUM(price), 0)
			  FROM subscriptions WHERE status = 'active'`
	if err := s.DB.QueryRowContext(ctx, subsQuery).
		Scan(&stats.TotalSubscriptions, &stats.MonthlyRevenue); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
