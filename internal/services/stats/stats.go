// Package stats serves the public aggregate counters shown on the
// marketing page.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/adblockpro/backend/internal/models"
)

const globalStatsCacheKey = "stats:global"
const globalStatsCacheTTL = 5 * time.Minute

// Repository is the persistence contract for the aggregates.
type Repository interface {
	GetGlobalStats(ctx context.Context) (*models.GlobalStats, error)
}

// Cache is the aggregate cache contract.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service serves the cached global aggregate.
type Service struct {
	repo  Repository
	cache Cache
}

// New creates a stats Service.
func New(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Global returns the site-wide counters. The aggregate scans the whole users
// table, so it is cached for five minutes.
func (s *Service) Global(ctx context.Context) (*models.GlobalStats, error) {
	const op = "stats.Global"

	var cached models.GlobalStats
	if found, err := s.cache.Get(globalStatsCacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	stats, err := s.repo.GetGlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = s.cache.Set(globalStatsCacheKey, stats, globalStatsCacheTTL)
	return stats, nil
}
