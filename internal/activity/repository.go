package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Repository persists activity and stock movement logs.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores one activity entry.
func (r *Repository) Insert(ctx context.Context, log *Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListLogs returns the activity page selected by filters, newest first.
func (r *Repository) ListLogs(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Log], error) {
	base := r.db.WithContext(ctx).Model(&Log{}).Scopes(
		listing.Matching(filters.String(listing.SearchKey), "description", "entity_type"),
		listing.Equals("action", filters.String(TypeKey)),
		listing.Between("created_at", filters),
	)
	return listing.FindPage[Log](base, filters, "created_at DESC, id DESC")
}

// ListInventory returns the stock movement page selected by filters.
func (r *Repository) ListInventory(ctx context.Context, filters urlstate.FilterSet) (listing.Page[InventoryEntry], error) {
	base := r.db.WithContext(ctx).Table("inventory_logs AS l").
		Joins("JOIN products p ON p.id = l.product_id").
		Scopes(
			listing.Matching(filters.String(listing.SearchKey), "p.name", "p.sku", "l.reference"),
			listing.Equals("l.reason", filters.String(TypeKey)),
			listing.Between("l.created_at", filters),
		)
	return listing.FindPage[InventoryEntry](base, filters, "l.created_at DESC, l.id DESC", func(db *gorm.DB) *gorm.DB {
		return db.Select("l.*, p.name AS product_name, p.sku AS product_sku")
	})
}
