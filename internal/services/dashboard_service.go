package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/repository"
	"github.com/angryss/idp-engine/pkg/cache"
	"github.com/angryss/idp-engine/pkg/logger"
)

const dashboardCacheKey = "dashboard:statistics"

// EntityStats is one per-entity row of the admin dashboard.
type EntityStats struct {
	Total    int64 `json:"total"`
	Enabled  int64 `json:"enabled"`
	Disabled int64 `json:"disabled"`
}

// MappingStats adds completeness counts to the mapping row.
type MappingStats struct {
	EntityStats
	Complete   int64 `json:"complete"`
	Incomplete int64 `json:"incomplete"`
}

// DashboardStatistics is the admin dashboard snapshot.
type DashboardStatistics struct {
	CloudProviders EntityStats  `json:"cloud_providers"`
	ResourceTypes  EntityStats  `json:"resource_types"`
	Mappings       MappingStats `json:"mappings"`
	Blueprints     EntityStats  `json:"blueprints"`
	Stacks         EntityStats  `json:"stacks"`
	Teams          int64        `json:"teams"`
	Domains        int64        `json:"domains"`
	Categories     int64        `json:"categories"`
	Collections    int64        `json:"collections"`
	APIKeys        int64        `json:"api_keys"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// DashboardService assembles platform statistics, cached for a short TTL
// because the counts fan out across every repository.
type DashboardService interface {
	Statistics(ctx context.Context) (*DashboardStatistics, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	repos *repository.Registry
	cache *cache.Cache
	ttl   time.Duration
}

func NewDashboardService(repos *repository.Registry, c *cache.Cache, ttl time.Duration) DashboardService {
	return &dashboardService{repos: repos, cache: c, ttl: ttl}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) Statistics(ctx context.Context) (*DashboardStatistics, error) {
	if s.cache != nil {
		var cached DashboardStatistics
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.L().Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl); err != nil {
			logger.L().Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		logger.L().Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func (s *dashboardService) collect(ctx context.Context) (*DashboardStatistics, error) {
	stats := &DashboardStatistics{GeneratedAt: time.Now().UTC()}

	var err error
	if stats.CloudProviders, err = toggleStats(ctx, s.repos.CloudProviders.Count, s.repos.CloudProviders.CountEnabled); err != nil {
		return nil, err
	}
	if stats.ResourceTypes, err = toggleStats(ctx, s.repos.ResourceTypes.Count, s.repos.ResourceTypes.CountEnabled); err != nil {
		return nil, err
	}
	if stats.Blueprints, err = toggleStats(ctx, s.repos.Blueprints.Count, s.repos.Blueprints.CountEnabled); err != nil {
		return nil, err
	}
	if stats.Stacks, err = toggleStats(ctx, s.repos.Stacks.Count, s.repos.Stacks.CountEnabled); err != nil {
		return nil, err
	}

	mappingStats, err := toggleStats(ctx, s.repos.Mappings.Count, s.repos.Mappings.CountEnabled)
	if err != nil {
		return nil, err
	}
	stats.Mappings.EntityStats = mappingStats

	mappings, err := s.repos.Mappings.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range mappings {
		m := &mappings[i]
		complete := false
		if m.HasModuleLocation() {
			n, err := s.repos.Properties.CountByMapping(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			complete = n > 0
		}
		if complete {
			stats.Mappings.Complete++
		} else {
			stats.Mappings.Incomplete++
		}
	}

	if stats.Teams, err = s.repos.Teams.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Domains, err = s.repos.Domains.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Categories, err = s.repos.Categories.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Collections, err = s.repos.Collections.Count(ctx); err != nil {
		return nil, err
	}
	if stats.APIKeys, err = s.repos.APIKeys.Count(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func toggleStats(ctx context.Context, count, countEnabled func(context.Context) (int64, error)) (EntityStats, error) {
	total, err := count(ctx)
	if err != nil {
		return EntityStats{}, err
	}
	enabled, err := countEnabled(ctx)
	if err != nil {
		return EntityStats{}, err
	}
	return EntityStats{Total: total, Enabled: enabled, Disabled: total - enabled}, nil
}
