// Package dashboard aggregates the numbers shown on the admin home page.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// CacheName is the list name the summary is cached under.
const CacheName = "dashboard"

// Cache stores JSON values under a versioned key.
type Cache interface {
	Fetch(ctx context.Context, list, key string, dest any, loader func(context.Context) (any, error)) error
}

// Service builds the dashboard summary.
type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Summary returns the dashboard summary, cached until the next recorded
// activity.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	if s.cache == nil {
		return s.build(ctx, today)
	}
	var out Summary
	err := s.cache.Fetch(ctx, CacheName, today.Format(urlstate.DateLayout), &out, func(ctx context.Context) (any, error) {
		return s.build(ctx, today)
	})
	return out, err
}

func (s *Service) build(ctx context.Context, today time.Time) (Summary, error) {
	since := today.AddDate(0, 0, -(RevenueDays - 1))
	out := Summary{GeneratedAt: s.now().UTC()}
	var revenue []RevenuePoint

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.repo.Counts(ctx, since)
		if err != nil {
			return fmt.Errorf("dashboard: counts: %w", err)
		}
		out.Counts = c
		return nil
	})
	g.Go(func() error {
		points, err := s.repo.Revenue(ctx, since)
		if err != nil {
			return fmt.Errorf("dashboard: revenue: %w", err)
		}
		revenue = points
		return nil
	})
	g.Go(func() error {
		items, err := s.repo.LowStock(ctx, 10)
		if err != nil {
			return fmt.Errorf("dashboard: low stock: %w", err)
		}
		out.LowStock = items
		return nil
	})
	g.Go(func() error {
		items, err := s.repo.Recent(ctx, 10)
		if err != nil {
			return fmt.Errorf("dashboard: recent activity: %w", err)
		}
		out.Recent = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	out.Revenue = FillSeries(revenue, since, RevenueDays)
	if out.LowStock == nil {
		out.LowStock = []LowStockItem{}
	}
	if out.Recent == nil {
		out.Recent = []ActivityItem{}
	}
	return out, nil
}

// FillSeries returns one point per day starting at from, taking amounts
// from points and zero for missing days.
func FillSeries(points []RevenuePoint, from time.Time, days int) []RevenuePoint {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[p.Day] += p.Amount
	}
	out := make([]RevenuePoint, days)
	for i := range out {
		day := from.AddDate(0, 0, i).Format(urlstate.DateLayout)
		out[i] = RevenuePoint{Day: day, Amount: byDay[day]}
	}
	return out
}
