// Package expenses tracks operating costs.
package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Expense], error)
	Summarize(ctx context.Context, filters urlstate.FilterSet) (Summary, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id int64) error
}

// ActivityPort records changes and drops stale list pages.
type ActivityPort interface {
	Record(ctx context.Context, entry activity.Entry) error
	Invalidate(ctx context.Context, lists ...string)
}

// Service coordinates expense operations.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
	logger   *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activity: activity, logger: logger}
}

// List lists expenses for the expense page filters.
func (s *Service) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Expense], error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return listing.Page[Expense]{}, err
	}
	return s.repo.List(ctx, filters)
}

// Summarize totals the expenses matching filters across every page.
func (s *Service) Summarize(ctx context.Context, filters urlstate.FilterSet) (Summary, error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return Summary{}, err
	}
	return s.repo.Summarize(ctx, filters)
}

// Get loads one expense.
func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input and records an expense.
func (s *Service) Create(ctx context.Context, userID int64, input Input) (Expense, error) {
	var e Expense
	if err := apply(&e, input); err != nil {
		return Expense{}, err
	}
	if err := s.repo.Create(ctx, &e); err != nil {
		return Expense{}, err
	}
	s.record(ctx, userID, activity.ActionCreate, e)
	return e, nil
}

// Update replaces an expense.
func (s *Service) Update(ctx context.Context, userID, id int64, input Input) (Expense, error) {
	e := Expense{ID: id}
	if err := apply(&e, input); err != nil {
		return Expense{}, err
	}
	if err := s.repo.Update(ctx, &e); err != nil {
		return Expense{}, err
	}
	s.record(ctx, userID, activity.ActionUpdate, e)
	return e, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, userID, activity.ActionDelete, e)
	return nil
}

func apply(e *Expense, input Input) error {
	if err := shared.Validate(input); err != nil {
		return err
	}
	spent, err := time.Parse(urlstate.DateLayout, input.SpentAt)
	if err != nil {
		return err
	}
	e.Description = strings.TrimSpace(input.Description)
	e.Category = Category(input.Category)
	e.Amount = input.Amount
	e.SpentAt = spent
	return nil
}

func (s *Service) record(ctx context.Context, userID int64, action activity.Action, e Expense) {
	err := s.activity.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		EntityType:  "expense",
		EntityID:    e.ID,
		Description: fmt.Sprintf("%s expense %q", strings.ToLower(string(action)), e.Description),
		Details:     map[string]any{"amount": e.Amount, "category": e.Category},
	})
	if err != nil {
		s.logger.Warn("record activity", slog.Int64("expense", e.ID), slog.Any("error", err))
	}
	s.activity.Invalidate(ctx, Schema.Name)
}
