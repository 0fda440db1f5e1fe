package expenses

import "time"

// Category classifies an expense.
type Category string

const (
	CategoryRent      Category = "RENT"
	CategoryUtilities Category = "UTILITIES"
	CategorySupplies  Category = "SUPPLIES"
	CategoryPayroll   Category = "PAYROLL"
	CategoryOther     Category = "OTHER"
)

// Categories lists every expense category.
var Categories = []string{string(CategoryRent), string(CategoryUtilities), string(CategorySupplies), string(CategoryPayroll), string(CategoryOther)}

// Expense is money spent running the shop.
type Expense struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:500;not null" json:"description"`
	Category    Category  `gorm:"size:16;index;not null" json:"category"`
	Amount      float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	SpentAt     time.Time `gorm:"type:date;index;not null" json:"spent_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input creates or updates an expense. SpentAt is a YYYY-MM-DD date.
type Input struct {
	Description string  `json:"description" validate:"required,max=500"`
	Category    string  `json:"category" validate:"required,oneof=RENT UTILITIES SUPPLIES PAYROLL OTHER"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	SpentAt     string  `json:"spent_at" validate:"required,datetime=2006-01-02"`
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&Expense{}}
}
