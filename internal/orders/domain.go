package orders

import (
	"fmt"
	"math"
	"time"

	"github.com/odyssey-erp/stockroom/internal/customers"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every order status.
var Statuses = []string{string(StatusPending), string(StatusProcessing), string(StatusShipped), string(StatusDelivered), string(StatusCancelled)}

// PaymentStatus is the settlement state of an order or a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentStatuses lists every payment status.
var PaymentStatuses = []string{string(PaymentPending), string(PaymentPaid), string(PaymentFailed), string(PaymentRefunded)}

// Method is how a payment was made.
type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodTransfer Method = "TRANSFER"
)

// Methods lists every payment method.
var Methods = []string{string(MethodCash), string(MethodCard), string(MethodTransfer)}

var (
	// ErrInvalidTransition is returned for a status change the workflow forbids.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", httpx.ErrConflict)
	// ErrOrderClosed is returned when paying a cancelled or refunded order.
	ErrOrderClosed = fmt.Errorf("%w: order is closed", httpx.ErrConflict)
	// ErrInsufficientStock is returned when an item exceeds the product stock.
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", httpx.ErrConflict)
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a customer purchase.
type Order struct {
	ID            int64               `gorm:"primaryKey" json:"id"`
	Number        string              `gorm:"size:32;uniqueIndex;not null" json:"number"`
	CustomerID    int64               `gorm:"index;not null" json:"customer_id"`
	Customer      *customers.Customer `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Status        Status              `gorm:"size:16;index;not null" json:"status"`
	PaymentStatus PaymentStatus       `gorm:"size:16;index;not null" json:"payment_status"`
	Total         float64             `gorm:"type:numeric(12,2);not null" json:"total"`
	Notes         string              `gorm:"size:1000" json:"notes,omitempty"`
	OrderedAt     time.Time           `gorm:"index;not null" json:"ordered_at"`
	Items         []OrderItem         `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments      []Payment           `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	OrderID     int64   `gorm:"index;not null" json:"order_id"`
	ProductID   int64   `gorm:"index;not null" json:"product_id"`
	ProductName string  `gorm:"size:200;not null" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}

// Subtotal is quantity times unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Payment settles part or all of an order.
type Payment struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	OrderID   int64         `gorm:"index;not null" json:"order_id"`
	Order     *Order        `json:"order,omitempty"`
	Amount    float64       `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method    Method        `gorm:"size:16;index;not null" json:"method"`
	Status    PaymentStatus `gorm:"size:16;index;not null" json:"status"`
	Reference string        `gorm:"size:64" json:"reference,omitempty"`
	PaidAt    *time.Time    `gorm:"index" json:"paid_at,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ItemInput orders quantity units of a product.
type ItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateInput places an order.
type CreateInput struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes      string      `json:"notes" validate:"max=1000"`
}

// StatusInput moves an order to a new status.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
}

// PaymentInput records a payment against an order.
type PaymentInput struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method" validate:"required,oneof=CASH CARD TRANSFER"`
	Status    string  `json:"status" validate:"omitempty,oneof=PAID FAILED"`
	Reference string  `json:"reference" validate:"max=64"`
}

// Settle derives an order's payment status from the amount paid so far.
// lastFailed reports whether the latest payment attempt failed.
func Settle(total, paid float64, lastFailed bool) PaymentStatus {
	if cents(paid) >= cents(total) {
		return PaymentPaid
	}
	if lastFailed && cents(paid) == 0 {
		return PaymentFailed
	}
	return PaymentPending
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&Order{}, &OrderItem{}, &Payment{}}
}
