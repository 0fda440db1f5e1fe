package customers

import (
	"strings"
	"time"
)

// Type segments customers.
type Type string

const (
	TypeIndividual Type = "INDIVIDUAL"
	TypeBusiness   Type = "BUSINESS"
	TypeWholesale  Type = "WHOLESALE"
)

// Types lists every customer type.
var Types = []string{string(TypeIndividual), string(TypeBusiness), string(TypeWholesale)}

// Customer buys from the shop.
type Customer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;index;not null" json:"name"`
	Email     string    `gorm:"size:200;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:40" json:"phone,omitempty"`
	Address   string    `gorm:"size:500" json:"address,omitempty"`
	Type      Type      `gorm:"size:16;index;not null" json:"type"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerRow is a customer with order totals.
type CustomerRow struct {
	Customer
	OrderCount int     `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

// Input creates or updates a customer.
type Input struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Phone    string `json:"phone" validate:"max=40"`
	Address  string `json:"address" validate:"max=500"`
	Type     string `json:"type" validate:"required,oneof=INDIVIDUAL BUSINESS WHOLESALE"`
	IsActive *bool  `json:"is_active"`
}

// normalize trims every field and lowercases the email.
func (in Input) normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Type = strings.TrimSpace(in.Type)
	return in
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&Customer{}}
}
