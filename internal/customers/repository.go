package customers

import (
	"context"

	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Repository persists customers.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// List returns the customer page selected by filters with order totals.
func (r *Repository) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CustomerRow], error) {
	base := r.db.WithContext(ctx).Model(&Customer{}).Scopes(
		listing.Matching(filters.String(listing.SearchKey), "customers.name", "customers.email", "customers.phone"),
		listing.Equals("customers.type", filters.String(TypeKey)),
	).Where("customers.is_active = ?", filters.Bool(IsActiveKey))
	page, err := listing.FindPage[CustomerRow](base, filters, "customers.name ASC, customers.id ASC", func(tx *gorm.DB) *gorm.DB {
		return tx.Select(`customers.*,
			(SELECT COUNT(*) FROM orders o WHERE o.customer_id = customers.id) AS order_count,
			(SELECT COALESCE(SUM(o.total), 0) FROM orders o WHERE o.customer_id = customers.id AND o.status <> 'CANCELLED') AS total_spent`)
	})
	return page, db.Translate(err)
}

// Get loads one customer.
func (r *Repository) Get(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, db.Translate(err)
}

// Create inserts c.
func (r *Repository) Create(ctx context.Context, c *Customer) error {
	return db.Translate(r.db.WithContext(ctx).Create(c).Error)
}

// Update saves c.
func (r *Repository) Update(ctx context.Context, c *Customer) error {
	res := r.db.WithContext(ctx).Model(c).
		Select("name", "email", "phone", "address", "type", "is_active").
		Updates(c)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a customer.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Customer{}, id)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// Count returns the number of active customers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Customer{}).Where("is_active = ?", true).Count(&n).Error
	return n, db.Translate(err)
}
