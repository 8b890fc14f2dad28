// Package admin contains the administrative read/override surface over
// users and subscriptions.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/adblockpro/backend/internal/models"
)

const adminStatsCacheKey = "admin:stats"
const adminStatsCacheTTL = time.Minute

// Repository is the persistence contract for the admin surface.
type Repository interface {
	GetAdminStats(ctx context.Context) (*models.AdminStats, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	AdminUpdateUser(ctx context.Context, userUID string, plan, role *string, verified *bool) (*models.User, error)
	DeleteUser(ctx context.Context, userUID string) error
	ListAllSubscriptions(ctx context.Context, page, limit int) ([]*models.AdminSubscription, int64, error)
}

// Cache is the aggregate cache contract.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// UserOverride carries the admin-editable user fields; nil leaves a field.
type UserOverride struct {
	Plan     *string
	Role     *string
	Verified *bool
}

// Pagination is the page slice description returned with listings.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

// Service implements the admin operations.
type Service struct {
	repo  Repository
	cache Cache
}

// New creates an admin Service.
func New(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// DashboardStats returns the aggregate counters, cached for a minute.
func (s *Service) DashboardStats(ctx context.Context) (*models.AdminStats, error) {
	const op = "admin.DashboardStats"

	var cached models.AdminStats
	if found, err := s.cache.Get(adminStatsCacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	stats, err := s.repo.GetAdminStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// cache failures only cost the next caller a query
	_ = s.cache.Set(adminStatsCacheKey, stats, adminStatsCacheTTL)
	return stats, nil
}

// ListUsers returns a page of users with the pagination summary.
func (s *Service) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, *Pagination, error) {
	const op = "admin.ListUsers"

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	users, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, paginate(total, filter.Page, filter.Limit), nil
}

// GetUser returns a single user by uid.
func (s *Service) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.repo.GetUser(ctx, userUID)
}

// UpdateUser overrides plan, role or the verified flag of a user.
func (s *Service) UpdateUser(ctx context.Context, userUID string, override UserOverride) (*models.User, error) {
	return s.repo.AdminUpdateUser(ctx, userUID, override.Plan, override.Role, override.Verified)
}

// DeleteUser removes a user account.
func (s *Service) DeleteUser(ctx context.Context, userUID string) error {
	return s.repo.DeleteUser(ctx, userUID)
}

// ListSubscriptions returns a page of all subscriptions with their owners.
func (s *Service) ListSubscriptions(ctx context.Context, page, limit int) ([]*models.AdminSubscription, *Pagination, error) {
	const op = "admin.ListSubscriptions"

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	subs, total, err := s.repo.ListAllSubscriptions(ctx, page, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, paginate(total, page, limit), nil
}

func paginate(total int64, page, limit int) *Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return &Pagination{Total: total, Page: page, Pages: pages}
}
