// Package orders places orders, moves them through fulfilment and records
// their payments.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/catalog"
	"github.com/odyssey-erp/stockroom/internal/customers"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// ExportLimit caps the rows of one CSV export.
const ExportLimit = 10000

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Order], error)
	Export(ctx context.Context, filters urlstate.FilterSet, limit int) ([]Order, error)
	ListPayments(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Payment], error)
	Get(ctx context.Context, id int64) (Order, error)
	Create(ctx context.Context, o *Order, lines []ItemInput, userID *int64) error
	UpdateStatus(ctx context.Context, id int64, to Status, userID *int64) (Order, error)
	RecordPayment(ctx context.Context, orderID int64, p *Payment) (Order, error)
}

// ActivityPort records changes and drops stale list pages.
type ActivityPort interface {
	Record(ctx context.Context, entry activity.Entry) error
	Invalidate(ctx context.Context, lists ...string)
}

// Service coordinates order operations.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activity: activity, logger: logger, now: time.Now}
}

// List lists orders for the order page filters.
func (s *Service) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Order], error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return listing.Page[Order]{}, err
	}
	return s.repo.List(ctx, filters)
}

// ListPayments lists payments for the payment page filters.
func (s *Service) ListPayments(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Payment], error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return listing.Page[Payment]{}, err
	}
	return s.repo.ListPayments(ctx, filters)
}

// Export returns every order matching filters, up to ExportLimit.
func (s *Service) Export(ctx context.Context, filters urlstate.FilterSet) ([]Order, error) {
	if err := listing.CheckDateRange(filters); err != nil {
		return nil, err
	}
	return s.repo.Export(ctx, filters, ExportLimit)
}

// Get loads one order with items and payments.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// Create places an order. Lines for the same product are merged.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (Order, error) {
	if err := shared.Validate(input); err != nil {
		return Order{}, err
	}
	o := Order{
		Number:        NewNumber(),
		CustomerID:    input.CustomerID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Notes:         strings.TrimSpace(input.Notes),
		OrderedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, &o, mergeLines(input.Items), actor(userID)); err != nil {
		return Order{}, err
	}
	s.record(ctx, userID, activity.ActionCreate, o.ID, "Created order "+o.Number,
		map[string]any{"total": o.Total, "items": len(o.Items)})
	s.activity.Invalidate(ctx, OrderSchema.Name, catalog.ProductSchema.Name, activity.InventorySchema.Name, customers.Schema.Name)
	return o, nil
}

// UpdateStatus moves an order to a new status.
func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, input StatusInput) (Order, error) {
	if err := shared.Validate(input); err != nil {
		return Order{}, err
	}
	o, err := s.repo.UpdateStatus(ctx, id, Status(input.Status), actor(userID))
	if err != nil {
		return Order{}, err
	}
	s.record(ctx, userID, activity.ActionUpdate, o.ID, fmt.Sprintf("Order %s is now %s", o.Number, o.Status),
		map[string]any{"status": o.Status})
	lists := []string{OrderSchema.Name, customers.Schema.Name}
	if o.Status == StatusCancelled {
		lists = append(lists, catalog.ProductSchema.Name, activity.InventorySchema.Name)
	}
	s.activity.Invalidate(ctx, lists...)
	return o, nil
}

// RecordPayment records a payment. The order becomes PAID once its paid
// payments cover the total.
func (s *Service) RecordPayment(ctx context.Context, userID, orderID int64, input PaymentInput) (Payment, Order, error) {
	if err := shared.Validate(input); err != nil {
		return Payment{}, Order{}, err
	}
	p := Payment{
		Amount:    input.Amount,
		Method:    Method(input.Method),
		Status:    PaymentPaid,
		Reference: strings.TrimSpace(input.Reference),
	}
	if input.Status != "" {
		p.Status = PaymentStatus(input.Status)
	}
	o, err := s.repo.RecordPayment(ctx, orderID, &p)
	if err != nil {
		return Payment{}, Order{}, err
	}
	s.record(ctx, userID, activity.ActionCreate, o.ID, fmt.Sprintf("Recorded %s payment for order %s", p.Status, o.Number),
		map[string]any{"amount": p.Amount, "method": p.Method, "payment_status": o.PaymentStatus})
	s.activity.Invalidate(ctx, OrderSchema.Name, PaymentSchema.Name)
	return p, o, nil
}

// NewNumber returns a fresh order number.
func NewNumber() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func mergeLines(lines []ItemInput) []ItemInput {
	index := make(map[int64]int, len(lines))
	out := make([]ItemInput, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

func actor(userID int64) *int64 {
	if userID <= 0 {
		return nil
	}
	return &userID
}

func (s *Service) record(ctx context.Context, userID int64, action activity.Action, id int64, desc string, details map[string]any) {
	err := s.activity.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		EntityType:  "order",
		EntityID:    id,
		Description: desc,
		Details:     details,
	})
	if err != nil {
		s.logger.Warn("record activity", slog.Int64("order", id), slog.Any("error", err))
	}
}
