// Package customers manages the customer directory.
package customers

import (
	"context"
	"log/slog"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CustomerRow], error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
}

// ActivityPort records changes and drops stale list pages.
type ActivityPort interface {
	Record(ctx context.Context, entry activity.Entry) error
	Invalidate(ctx context.Context, lists ...string)
}

// Service coordinates customer operations.
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

// List lists customers for the customer page filters.
func (s *Service) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CustomerRow], error) {
	return s.repo.List(ctx, filters)
}

// Get loads one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input and creates a customer.
func (s *Service) Create(ctx context.Context, userID int64, input Input) (Customer, error) {
	input = input.normalize()
	if err := shared.Validate(input); err != nil {
		return Customer{}, err
	}
	c := Customer{IsActive: true}
	apply(&c, input)
	if err := s.repo.Create(ctx, &c); err != nil {
		return Customer{}, err
	}
	s.record(ctx, userID, activity.ActionCreate, c, "Created customer "+c.Name)
	return c, nil
}

// Update replaces a customer's details.
func (s *Service) Update(ctx context.Context, userID, id int64, input Input) (Customer, error) {
	input = input.normalize()
	if err := shared.Validate(input); err != nil {
		return Customer{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	apply(&c, input)
	if err := s.repo.Update(ctx, &c); err != nil {
		return Customer{}, err
	}
	s.record(ctx, userID, activity.ActionUpdate, c, "Updated customer "+c.Name)
	return c, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, userID, activity.ActionDelete, c, "Deleted customer "+c.Name)
	return nil
}

func apply(c *Customer, input Input) {
	c.Name = input.Name
	c.Email = input.Email
	c.Phone = input.Phone
	c.Address = input.Address
	c.Type = Type(input.Type)
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
}

func (s *Service) record(ctx context.Context, userID int64, action activity.Action, c Customer, desc string) {
	err := s.activity.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		EntityType:  "customer",
		EntityID:    c.ID,
		Description: desc,
		Details:     map[string]any{"email": c.Email, "type": c.Type},
	})
	if err != nil {
		s.logger.Warn("record activity", slog.Int64("customer", c.ID), slog.Any("error", err))
	}
	s.activity.Invalidate(ctx, Schema.Name)
}
