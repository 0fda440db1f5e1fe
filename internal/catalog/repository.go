package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// ProductFilter is the typed form of the product list filters.
type ProductFilter struct {
	Search     string
	CategoryID int64
	InStock    bool
	LowStock   bool
	IsActive   bool
}

// Repository persists products and categories.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// ListProducts returns the product page selected by filters.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter, filters urlstate.FilterSet) (listing.Page[Product], error) {
	base := r.db.WithContext(ctx).Model(&Product{}).Scopes(
		listing.Matching(filter.Search, "products.name", "products.sku", "products.description"),
	).Where("products.is_active = ?", filter.IsActive)
	if filter.CategoryID > 0 {
		base = base.Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.InStock {
		base = base.Where("products.stock > 0")
	}
	if filter.LowStock {
		base = base.Where("products.stock <= products.reorder_level")
	}
	page, err := listing.FindPage[Product](base, filters, "products.name ASC, products.id ASC", func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Category")
	})
	return page, db.Translate(err)
}

// GetProduct loads one product.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	return p, db.Translate(err)
}

// CreateProduct inserts p and its opening stock movement.
func (r *Repository) CreateProduct(ctx context.Context, p *Product, userID *int64) error {
	return db.Translate(db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Category").Create(p).Error; err != nil {
			return err
		}
		if p.Stock == 0 {
			return nil
		}
		return tx.Create(&activity.InventoryLog{
			ProductID:  p.ID,
			Change:     p.Stock,
			StockAfter: p.Stock,
			Reason:     activity.ReasonRestock,
			Note:       "opening stock",
			UserID:     userID,
		}).Error
	}))
}

// UpdateProduct saves every column of p except stock, which only moves
// through AdjustStock.
func (r *Repository) UpdateProduct(ctx context.Context, p *Product) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("sku", "name", "description", "category_id", "price", "cost", "reorder_level", "is_active").
		Updates(p)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// AdjustStock applies a stock movement under a row lock and logs it.
func (r *Repository) AdjustStock(ctx context.Context, id int64, move activity.InventoryLog) (Product, error) {
	var p Product
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			return err
		}
		next := p.Stock + move.Change
		if next < 0 {
			return fmt.Errorf("%w: %s has %d", ErrInsufficientStock, p.SKU, p.Stock)
		}
		if err := tx.Model(&p).Update("stock", next).Error; err != nil {
			return err
		}
		p.Stock = next
		move.ProductID = p.ID
		move.StockAfter = next
		return tx.Create(&move).Error
	})
	return p, db.Translate(err)
}

// LowStock returns active products at or below their reorder level.
func (r *Repository) LowStock(ctx context.Context, limit int) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= reorder_level", true).
		Order("stock ASC, name ASC").
		Limit(limit).
		Find(&products).Error
	return products, db.Translate(err)
}

// ListCategories returns the category page selected by filters.
func (r *Repository) ListCategories(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CategoryRow], error) {
	base := r.db.WithContext(ctx).Model(&Category{}).Scopes(
		listing.Matching(filters.String(listing.SearchKey), "categories.name", "categories.description"),
	)
	page, err := listing.FindPage[CategoryRow](base, filters, "categories.name ASC", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("categories.*, (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id) AS product_count")
	})
	return page, db.Translate(err)
}

// CategoryOptions returns every category for filter selects.
func (r *Repository) CategoryOptions(ctx context.Context) ([]CategoryOption, error) {
	var opts []CategoryOption
	err := r.db.WithContext(ctx).Model(&Category{}).Select("id, name").Order("name ASC").Scan(&opts).Error
	return opts, db.Translate(err)
}

// CreateCategory inserts c.
func (r *Repository) CreateCategory(ctx context.Context, c *Category) error {
	return db.Translate(r.db.WithContext(ctx).Create(c).Error)
}

// UpdateCategory saves c.
func (r *Repository) UpdateCategory(ctx context.Context, c *Category) error {
	res := r.db.WithContext(ctx).Model(c).Select("name", "description").Updates(c)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteCategory removes a category. Its products become uncategorised.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Category{}, id)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}
