package expenses

import (
	"context"

	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Summary totals the expenses matching a filter.
type Summary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Repository persists expenses.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

func (r *Repository) base(ctx context.Context, filters urlstate.FilterSet) *gorm.DB {
	return r.db.WithContext(ctx).Model(&Expense{}).Scopes(
		listing.Matching(filters.String(listing.SearchKey), "description"),
		listing.Equals("category", filters.String(CategoryKey)),
		listing.Between("spent_at", filters),
	)
}

// List returns the expense page selected by filters, latest first.
func (r *Repository) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Expense], error) {
	page, err := listing.FindPage[Expense](r.base(ctx, filters), filters, "spent_at DESC, id DESC")
	return page, db.Translate(err)
}

// Summarize totals every expense matching filters.
func (r *Repository) Summarize(ctx context.Context, filters urlstate.FilterSet) (Summary, error) {
	var s Summary
	err := r.base(ctx, filters).Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").Scan(&s).Error
	return s, db.Translate(err)
}

// Get loads one expense.
func (r *Repository) Get(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := r.db.WithContext(ctx).First(&e, id).Error
	return e, db.Translate(err)
}

// Create inserts e.
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	return db.Translate(r.db.WithContext(ctx).Create(e).Error)
}

// Update saves e.
func (r *Repository) Update(ctx context.Context, e *Expense) error {
	res := r.db.WithContext(ctx).Model(e).Select("description", "category", "amount", "spent_at").Updates(e)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes an expense.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Expense{}, id)
	if res.Error != nil {
		return db.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.Translate(gorm.ErrRecordNotFound)
	}
	return nil
}
