// Package catalog manages products, categories and stock levels.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	ListProducts(ctx context.Context, filter ProductFilter, filters urlstate.FilterSet) (listing.Page[Product], error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	CreateProduct(ctx context.Context, p *Product, userID *int64) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, move activity.InventoryLog) (Product, error)
	LowStock(ctx context.Context, limit int) ([]Product, error)
	ListCategories(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CategoryRow], error)
	CategoryOptions(ctx context.Context) ([]CategoryOption, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// ActivityPort records changes and drops stale list pages.
type ActivityPort interface {
	Record(ctx context.Context, entry activity.Entry) error
	Invalidate(ctx context.Context, lists ...string)
}

// Service coordinates catalog operations.
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

// ListProducts lists products for the product page filters.
func (s *Service) ListProducts(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Product], error) {
	filter := ProductFilter{
		Search:   filters.String(listing.SearchKey),
		InStock:  filters.Bool(InStockKey),
		LowStock: filters.Bool(LowStockKey),
		IsActive: filters.Bool(IsActiveKey),
		// 0 when absent or unparsable; the repository skips the filter.
		CategoryID: int64(filters.Int(CategoryKey)),
	}
	return s.repo.ListProducts(ctx, filter, filters)
}

// GetProduct loads one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CreateProduct validates input and creates the product with its opening
// stock.
func (s *Service) CreateProduct(ctx context.Context, userID int64, input ProductInput) (Product, error) {
	if err := shared.Validate(input); err != nil {
		return Product{}, err
	}
	p := Product{Stock: input.Stock, IsActive: true}
	applyProduct(&p, input)
	var actor *int64
	if userID > 0 {
		actor = &userID
	}
	if err := s.repo.CreateProduct(ctx, &p, actor); err != nil {
		return Product{}, err
	}
	s.record(ctx, userID, activity.ActionCreate, p.ID, "Created product "+p.Name, map[string]any{"sku": p.SKU, "stock": p.Stock})
	s.activity.Invalidate(ctx, ProductSchema.Name, CategorySchema.Name, activity.InventorySchema.Name)
	return p, nil
}

// UpdateProduct replaces the product's details. Stock is left untouched.
func (s *Service) UpdateProduct(ctx context.Context, userID, id int64, input ProductInput) (Product, error) {
	if err := shared.Validate(input); err != nil {
		return Product{}, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	applyProduct(&p, input)
	p.Category = nil
	if err := s.repo.UpdateProduct(ctx, &p); err != nil {
		return Product{}, err
	}
	s.record(ctx, userID, activity.ActionUpdate, p.ID, "Updated product "+p.Name, map[string]any{"sku": p.SKU, "price": p.Price})
	s.activity.Invalidate(ctx, ProductSchema.Name, CategorySchema.Name)
	return p, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, userID, id int64) error {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.record(ctx, userID, activity.ActionDelete, id, "Deleted product "+p.Name, map[string]any{"sku": p.SKU})
	s.activity.Invalidate(ctx, ProductSchema.Name, CategorySchema.Name)
	return nil
}

// AdjustStock moves a product's stock and logs the movement.
func (s *Service) AdjustStock(ctx context.Context, userID, id int64, adj StockAdjustment) (Product, error) {
	if err := shared.Validate(adj); err != nil {
		return Product{}, err
	}
	move := activity.InventoryLog{
		Change: adj.Change,
		Reason: activity.Reason(adj.Reason),
		Note:   strings.TrimSpace(adj.Note),
	}
	if userID > 0 {
		move.UserID = &userID
	}
	p, err := s.repo.AdjustStock(ctx, id, move)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, userID, activity.ActionUpdate, p.ID, fmt.Sprintf("Adjusted stock of %s by %+d", p.Name, adj.Change),
		map[string]any{"reason": adj.Reason, "stock": p.Stock})
	s.activity.Invalidate(ctx, ProductSchema.Name, activity.InventorySchema.Name)
	return p, nil
}

// LowStock returns active products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.LowStock(ctx, limit)
}

// ListCategories lists categories with their product counts.
func (s *Service) ListCategories(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CategoryRow], error) {
	return s.repo.ListCategories(ctx, filters)
}

// CategoryOptions returns every category for filter selects.
func (s *Service) CategoryOptions(ctx context.Context) ([]CategoryOption, error) {
	return s.repo.CategoryOptions(ctx)
}

// CreateCategory validates input and creates a category.
func (s *Service) CreateCategory(ctx context.Context, userID int64, input CategoryInput) (Category, error) {
	if err := shared.Validate(input); err != nil {
		return Category{}, err
	}
	c := Category{Name: strings.TrimSpace(input.Name), Description: strings.TrimSpace(input.Description)}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return Category{}, err
	}
	s.recordCategory(ctx, userID, activity.ActionCreate, c.ID, "Created category "+c.Name)
	s.activity.Invalidate(ctx, CategorySchema.Name)
	return c, nil
}

// UpdateCategory renames or redescribes a category.
func (s *Service) UpdateCategory(ctx context.Context, userID, id int64, input CategoryInput) (Category, error) {
	if err := shared.Validate(input); err != nil {
		return Category{}, err
	}
	c := Category{ID: id, Name: strings.TrimSpace(input.Name), Description: strings.TrimSpace(input.Description)}
	if err := s.repo.UpdateCategory(ctx, &c); err != nil {
		return Category{}, err
	}
	s.recordCategory(ctx, userID, activity.ActionUpdate, c.ID, "Updated category "+c.Name)
	s.activity.Invalidate(ctx, CategorySchema.Name, ProductSchema.Name)
	return c, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.recordCategory(ctx, userID, activity.ActionDelete, id, fmt.Sprintf("Deleted category #%d", id))
	s.activity.Invalidate(ctx, CategorySchema.Name, ProductSchema.Name)
	return nil
}

func applyProduct(p *Product, input ProductInput) {
	p.SKU = strings.TrimSpace(input.SKU)
	p.Name = strings.TrimSpace(input.Name)
	p.Description = strings.TrimSpace(input.Description)
	p.CategoryID = input.CategoryID
	p.Price = input.Price
	p.Cost = input.Cost
	p.ReorderLevel = input.ReorderLevel
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}

func (s *Service) record(ctx context.Context, userID int64, action activity.Action, id int64, desc string, details map[string]any) {
	s.write(ctx, activity.Entry{UserID: userID, Action: action, EntityType: "product", EntityID: id, Description: desc, Details: details})
}

func (s *Service) recordCategory(ctx context.Context, userID int64, action activity.Action, id int64, desc string) {
	s.write(ctx, activity.Entry{UserID: userID, Action: action, EntityType: "category", EntityID: id, Description: desc})
}

func (s *Service) write(ctx context.Context, entry activity.Entry) {
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record activity", slog.String("entity", entry.EntityType), slog.Int64("id", entry.EntityID), slog.Any("error", err))
	}
}
