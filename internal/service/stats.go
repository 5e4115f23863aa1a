package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// StatsServiceOptions groups dependencies for StatsService.
type StatsServiceOptions struct {
	Directory ports.Directory
	Cache     ports.StatsCache // optional, nil disables caching
	CacheTTL  time.Duration
	Logger    *slog.Logger
	Now       func() time.Time // test seam, defaults to time.Now
}

// StatsService computes the admin statistics aggregate, caching it briefly so
// dashboard refreshes do not hit the directory every time.
type StatsService struct {
	directory ports.Directory
	cache     ports.StatsCache
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewStatsService constructs a new StatsService.
func NewStatsService(opts StatsServiceOptions) *StatsService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &StatsService{
		directory: opts.Directory,
		cache:     opts.Cache,
		ttl:       opts.CacheTTL,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// UserStats returns the current user statistics. Cache failures other than a
// miss are logged and ignored; the directory remains the source of truth.
func (s *StatsService) UserStats(ctx context.Context) (ports.UserStats, error) {
	if s.cache != nil {
		stats, err := s.cache.Get(ctx)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", "error", err)
		}
	}

	if s.directory == nil {
		return ports.UserStats{}, apperr.Misconfigured("identity directory is not configured")
	}

	stats, err := s.directory.CountUsersByRole(ctx)
	if err != nil {
		return ports.UserStats{}, fmt.Errorf("count users: %w", err)
	}
	stats.Timestamp = s.now().UTC().Format(time.RFC3339)

	if s.cache != nil {
		if saveErr := s.cache.Save(ctx, stats, s.ttl); saveErr != nil {
			s.logger.Warn("stats cache write failed", "error", saveErr)
		}
	}

	return stats, nil
}
