// Package activity records who changed what, and every stock movement.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Store abstracts persistence for the service.
type Store interface {
	Insert(ctx context.Context, log *Log) error
	ListLogs(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Log], error)
	ListInventory(ctx context.Context, filters urlstate.FilterSet) (listing.Page[InventoryEntry], error)
}

// Invalidator drops cached list pages.
type Invalidator interface {
	Bump(ctx context.Context, lists ...string) error
}

// Service records and lists activity.
type Service struct {
	store  Store
	cache  Invalidator
	logger *slog.Logger
	feeds  []string
}

// NewService builds Service. cache may be nil.
func NewService(store Store, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger, feeds: []string{LogSchema.Name}}
}

// InvalidateOnRecord names further lists that show recent activity and must
// be dropped whenever an entry is recorded.
func (s *Service) InvalidateOnRecord(lists ...string) {
	s.feeds = append(s.feeds, lists...)
}

// Record stores entry in the activity feed.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	log := &Log{
		UserID:      optionalID(entry.UserID),
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    optionalID(entry.EntityID),
		Description: entry.Description,
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("activity: encode details: %w", err)
		}
		log.Details = raw
	}
	if err := s.store.Insert(ctx, log); err != nil {
		return fmt.Errorf("activity: record: %w", err)
	}
	s.Invalidate(ctx, s.feeds...)
	return nil
}

// Invalidate drops the cached pages of lists, logging failures.
func (s *Service) Invalidate(ctx context.Context, lists ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, lists...); err != nil {
		s.logger.Warn("invalidate list cache", slog.Any("lists", lists), slog.Any("error", err))
	}
}

// ListLogs lists the activity feed.
func (s *Service) ListLogs(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Log], error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return listing.Page[Log]{}, err
	}
	return s.store.ListLogs(ctx, filters)
}

// ListInventory lists stock movements.
func (s *Service) ListInventory(ctx context.Context, filters urlstate.FilterSet) (listing.Page[InventoryEntry], error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return listing.Page[InventoryEntry]{}, err
	}
	return s.store.ListInventory(ctx, filters)
}
