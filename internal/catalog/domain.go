package catalog

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// ErrInsufficientStock is returned when a movement would make stock negative.
var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", httpx.ErrConflict)

// Category groups products.
type Category struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRow is a category with its product count.
type CategoryRow struct {
	Category
	ProductCount int `json:"product_count"`
}

// Product is a sellable stock item.
type Product struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	SKU          string    `gorm:"column:sku;size:64;uniqueIndex;not null" json:"sku"`
	Name         string    `gorm:"size:200;index;not null" json:"name"`
	Description  string    `gorm:"size:1000" json:"description,omitempty"`
	CategoryID   *int64    `gorm:"index" json:"category_id,omitempty"`
	Category     *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Price        float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Cost         float64   `gorm:"type:numeric(12,2);not null" json:"cost"`
	Stock        int       `gorm:"not null" json:"stock"`
	ReorderLevel int       `gorm:"not null" json:"reorder_level"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowStock reports whether stock is at or below the reorder level.
func (p Product) LowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// ProductInput creates or updates a product.
type ProductInput struct {
	SKU          string  `json:"sku" validate:"required,max=64"`
	Name         string  `json:"name" validate:"required,max=200"`
	Description  string  `json:"description" validate:"max=1000"`
	CategoryID   *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Cost         float64 `json:"cost" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
	IsActive     *bool   `json:"is_active"`
}

// StockAdjustment moves a product's stock by Change.
type StockAdjustment struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"required,oneof=RESTOCK ADJUSTMENT RETURN"`
	Note   string `json:"note" validate:"max=500"`
}

// CategoryInput creates or updates a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// CategoryOption is a category choice for filter selects.
type CategoryOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&Category{}, &Product{}}
}
